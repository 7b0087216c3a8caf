// Package mail holds the Mailer implementations.
package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/orgodyssey/odyssey/internal/core/ports"
)

// LogMailer writes messages to the log instead of sending them. Used in
// development so confirmation links can be copied from the console.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg ports.Message) error {
	m.log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("html", msg.HTML).
		Msg("mail not sent (log transport)")
	return nil
}
