package services

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"eventify/internal/models"

	"github.com/skip2/go-qrcode"
)

// QRCodeSize is the rendered width and height of ticket QR codes in pixels
const QRCodeSize = 200

// TicketGenerator derives the ticket of a registration: its check-in URL
// and a QR code encoding that URL.
type TicketGenerator struct {
	baseURL string
}

func NewTicketGenerator(baseURL string) *TicketGenerator {
	return &TicketGenerator{baseURL: baseURL}
}

func (g *TicketGenerator) Generate(event *models.Event, registration *models.Registration) (*models.Ticket, error) {
	url := models.CheckInURL(g.baseURL, event.ID, registration.ID)

	svg, err := RenderQRCodeSVG(url, QRCodeSize)
	if err != nil {
		return nil, err
	}

	return &models.Ticket{
		EventID:       event.ID,
		ParticipantID: registration.ID,
		CheckInURL:    url,
		QRCodeSVG:     svg,
		QRCodeBase64:  base64.StdEncoding.EncodeToString(svg),
	}, nil
}

// RenderQRCodeSVG encodes content as a size x size SVG image. Modules are
// drawn on a unit grid and scaled by the viewBox, quiet zone included.
func RenderQRCodeSVG(content string, size int) ([]byte, error) {
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	bitmap := code.Bitmap()
	n := len(bitmap)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, size, size, n, n)
	buf.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/><path fill="#000000" d="`)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&buf, "M%d %dh1v1h-1z", x, y)
			}
		}
	}
	buf.WriteString(`"/></svg>`)

	return buf.Bytes(), nil
}
