package main

import (
	"testing"

	"eventify/internal/config"
	"eventify/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "migrate", "create-organizer", "seed"} {
		cmd, _, err := root.Find([]string{name})
		assert.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	status, _, err := root.Find([]string{"migrate", "status"})
	assert.NoError(t, err)
	assert.Equal(t, "status", status.Name())
}

func TestNewMailer(t *testing.T) {
	tests := []struct {
		driver string
		want   interface{}
	}{
		{"smtp", &services.SMTPMailer{}},
		{"resend", &services.ResendMailer{}},
		{"log", &services.LogMailer{}},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := &config.Config{
				Email:  config.EmailConfig{Driver: tt.driver, SMTPHost: "localhost", SMTPPort: 25},
				Resend: config.ResendConfig{APIKey: "re_test"},
			}
			assert.IsType(t, tt.want, newMailer(cfg, zerolog.Nop()))
		})
	}
}

func TestSampleEvents(t *testing.T) {
	for _, sample := range sampleEvents {
		assert.Greater(t, sample.inDays, 0, sample.title)
		assert.Greater(t, sample.capacity, 0, sample.title)
	}
}
