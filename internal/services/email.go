package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	texttemplate "text/template"

	"eventify/internal/models"

	"github.com/google/uuid"
)

// TicketDateLayout formats event dates in ticket emails
const TicketDateLayout = "02/01/2006 à 15:04"

// Message is a rendered email ready to be sent by any Mailer
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a rendered message. Implementations: SMTPMailer,
// ResendMailer and LogMailer.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// EmailConfig represents SMTP mailer configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

func (c EmailConfig) from() string {
	if c.FromName != "" {
		return fmt.Sprintf("%s <%s>", c.FromName, c.FromEmail)
	}
	return c.FromEmail
}

// TicketEmailRenderer turns a ticket delivery into the participant's email
type TicketEmailRenderer struct {
	html *template.Template
	text *texttemplate.Template
}

func NewTicketEmailRenderer() *TicketEmailRenderer {
	funcs := map[string]interface{}{
		"ticketDate": func(d *models.TicketDelivery) string { return d.EventDate.Format(TicketDateLayout) },
	}
	return &TicketEmailRenderer{
		html: template.Must(template.New("ticket_html").Funcs(funcs).Parse(ticketHTMLTemplate)),
		text: texttemplate.Must(texttemplate.New("ticket_text").Funcs(funcs).Parse(ticketTextTemplate)),
	}
}

func (r *TicketEmailRenderer) Render(delivery *models.TicketDelivery) (*Message, error) {
	data := struct {
		*models.TicketDelivery
		QRCodeURI template.URL
	}{
		TicketDelivery: delivery,
		// the payload is base64 we produced ourselves
		QRCodeURI: template.URL("data:image/svg+xml;base64," + delivery.QRCodeBase64),
	}

	var htmlBuf bytes.Buffer
	if err := r.html.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	var textBuf bytes.Buffer
	if err := r.text.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}

	return &Message{
		To:      delivery.ParticipantEmail,
		Subject: "Votre Billet pour : " + delivery.EventTitle,
		HTML:    htmlBuf.String(),
		Text:    textBuf.String(),
	}, nil
}

// SMTPMailer sends mail through a plain SMTP relay
type SMTPMailer struct {
	config   EmailConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(config EmailConfig) *SMTPMailer {
	return &SMTPMailer{config: config, sendMail: smtp.SendMail}
}

// Send ignores ctx cancellation once the SMTP exchange has started
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.config.SMTPUsername, m.config.SMTPPassword, m.config.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", m.config.SMTPHost, m.config.SMTPPort)
	if err := m.sendMail(addr, auth, m.config.FromEmail, []string{msg.To}, m.mimeMessage(msg)); err != nil {
		return fmt.Errorf("%w: smtp: %v", models.ErrMailDelivery, err)
	}
	return nil
}

// mimeMessage builds a multipart/alternative message with text and HTML
// parts
func (m *SMTPMailer) mimeMessage(msg *Message) []byte {
	boundary := "eventify-" + strings.ReplaceAll(uuid.NewString(), "-", "")

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.config.from())
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mimeHeader(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

func mimeHeader(value string) string {
	return mime.QEncoding.Encode("utf-8", value)
}

const ticketHTMLTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<title>Votre Billet Événement</title>
</head>
<body style="font-family: Arial, sans-serif; color: #333333; background-color: #f4f4f4;">
<div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; padding: 20px; border-radius: 8px;">
	<h1 style="color: #ff6700; text-align: center;">Billet Événement</h1>
	<p>Bonjour <strong>{{.ParticipantName}}</strong>, vous êtes inscrit(e) à l'événement !</p>
	<p>Voici votre billet officiel. Veuillez le conserver précieusement.</p>
	<div style="border: 1px solid #dddddd; padding: 15px; border-radius: 4px;">
		<h2>Détails du Billet</h2>
		<p><strong>Événement :</strong> {{.EventTitle}}</p>
		<p><strong>Date et heure :</strong> {{ticketDate .TicketDelivery}}</p>
		<p><strong>Lieu :</strong> {{.EventLocation}}</p>
		<p><strong>Nom du participant :</strong> {{.ParticipantName}}</p>
	</div>
	<div style="text-align: center; padding: 20px; background-color: #f9f9f9; border: 1px dashed #cccccc; margin-top: 20px;">
		<h3>Code d'Accès Rapide</h3>
		<img src="{{.QRCodeURI}}" alt="QR Code du Billet" width="200" height="200" style="display: block; margin: 10px auto;">
		<p style="font-size: 0.9em; color: #555555;">Veuillez présenter ce code à l'entrée pour validation.</p>
	</div>
	<p style="margin-top: 30px;">Nous vous attendons avec impatience !</p>
	<p style="text-align: center; font-size: 12px; color: #999999;">Ceci est un email généré automatiquement par Eventify.</p>
</div>
</body>
</html>`

const ticketTextTemplate = `Bonjour {{.ParticipantName}}, vous êtes inscrit(e) à l'événement !

Événement : {{.EventTitle}}
Date et heure : {{ticketDate .TicketDelivery}}
Lieu : {{.EventLocation}}
Nom du participant : {{.ParticipantName}}

Lien de validation : {{.CheckInURL}}
`
