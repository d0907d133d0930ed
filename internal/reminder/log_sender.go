package reminder

import (
	"context"
	"log/slog"
)

// LogSender only logs messages. It stands in for Twilio in development.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(_ context.Context, to, body string) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("whatsapp message (not sent)", "to", to, "chars", len(body))
	return nil
}
