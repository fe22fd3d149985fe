package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/bulkmail/internal/domain"
	"github.com/dukerupert/bulkmail/internal/telemetry"
)

// HeaderRunID ties a delivered message back to the run that sent it.
const HeaderRunID = "X-Run-Id"

// ServiceOptions configures a Service.
type ServiceOptions struct {
	From    string        // optional - sender default used when empty
	Timeout time.Duration // per-recipient bound; zero means DefaultSendTimeout
	RunID   string        // optional - stamped on every message as X-Run-Id
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Service sends personalized emails to recipients one at a time.
// A failure for one recipient never stops the rest of a batch, and nothing is
// retried.
type Service struct {
	sender  Sender
	from    string
	timeout time.Duration
	headers map[string]string
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewService creates a new email service
func NewService(sender Sender, opts ServiceOptions) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSendTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var headers map[string]string
	if opts.RunID != "" {
		headers = map[string]string{HeaderRunID: opts.RunID}
	}

	return &Service{
		sender:  sender,
		headers: headers,
		from:    opts.From,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// SendOne delivers a single HTML email to to. It returns nil on success and
// a *SendFailure otherwise, including when the sender panics.
func (s *Service) SendOne(ctx context.Context, to, subject, htmlBody string) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &SendFailure{Email: to, Err: fmt.Errorf("sender panic: %v", r)}
		}
		s.metrics.SendObserved(time.Since(start), err)
	}()

	sendErr := s.sender.Send(ctx, &Email{
		To:       []string{to},
		From:     s.from,
		Subject:  subject,
		HTMLBody: htmlBody,
		Headers:  s.headers,
	})
	if sendErr != nil {
		return &SendFailure{Email: to, Err: sendErr}
	}

	return nil
}

// SendBatch renders tmpl for each recipient in order and sends it. Every
// recipient gets exactly one attempt; the returned slice holds one entry per
// failed recipient and is empty when all succeeded.
//
// If ctx ends mid-batch the remaining recipients are reported as failed with
// the context error.
func (s *Service) SendBatch(ctx context.Context, recipients []domain.Recipient, subject, tmpl string) []SendFailure {
	failures := make([]SendFailure, 0)

	for i, rcpt := range recipients {
		if ctxErr := ctx.Err(); ctxErr != nil {
			for _, rest := range recipients[i:] {
				failures = append(failures, SendFailure{Email: rest.Email, Err: ctxErr})
			}
			s.logger.Warn("batch interrupted", "remaining", len(recipients)-i, "error", ctxErr)
			break
		}

		err := s.SendOne(ctx, rcpt.Email, subject, Render(tmpl, rcpt.FullName))
		if err != nil {
			var failure *SendFailure
			if !errors.As(err, &failure) {
				failure = &SendFailure{Email: rcpt.Email, Err: err}
			}
			s.logger.Error("email failed", "to", rcpt.Email, "stt", rcpt.SequenceNumber, "error", failure.Err)
			failures = append(failures, *failure)
			continue
		}

		s.logger.Info("email sent", "to", rcpt.Email, "stt", rcpt.SequenceNumber)
	}

	s.logger.Info("batch finished",
		"recipients", len(recipients),
		"sent", len(recipients)-len(failures),
		"failed", len(failures),
	)
	return failures
}
