package sender

import "context"

// MailSender is the transactional dispatch pipeline's only dependency on an
// external email provider. Send returns the provider-assigned message id on
// success, or a transport error on failure — the Sender stage translates
// that error into the request's Failed/error field, it never retries here.
type MailSender interface {
	Send(ctx context.Context, from, to, subject, body string) (messageID string, err error)
}
