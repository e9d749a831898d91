package application

import "context"

// Mailer delivers outbound notification mail. Failures surface to the caller
// unchanged; the services never retry a send.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
