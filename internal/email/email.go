package email

import "context"

// Email represents an email message to be sent.
type Email struct {
	To       []string          // Recipient email addresses
	From     string            // Sender email address (optional, sender default used when empty)
	Subject  string            // Email subject
	HTMLBody string            // HTML body, sent as the single text/html part
	Headers  map[string]string // Custom headers (optional)
}

// Sender defines the interface for delivering one message.
// Implementations must not retry; one call is one delivery attempt.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}
