package ports

import "context"

// Message is an outgoing email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers messages. Transport details live behind it.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
