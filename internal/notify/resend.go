package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/mail"

	"github.com/Togather-Foundation/eventplanner/internal/domain/attendees"
	"github.com/Togather-Foundation/eventplanner/internal/domain/events"
	"github.com/Togather-Foundation/eventplanner/internal/metrics"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hi {{.Name}},</p>
<p><strong>{{.Title}}</strong> starts on {{.Date}} at {{.Location}}.</p>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<p>See you there.</p>
</body>
</html>
`))

type reminderData struct {
	Name        string
	Title       string
	Date        string
	Location    string
	Description string
}

// ResendNotifier mails each attendee through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

// NewResendNotifier validates the sender address and builds a client for apiKey.
func NewResendNotifier(apiKey, from string, logger zerolog.Logger) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if _, err := mail.ParseAddress(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger.With().Str("component", "notify").Str("channel", ChannelResend).Logger(),
	}, nil
}

// NotifyUpcoming sends one email per attendee. A failed send does not stop the
// remaining ones; all failures are returned joined. A rate limit response aborts
// the batch since every later send would fail the same way.
func (n *ResendNotifier) NotifyUpcoming(ctx context.Context, event events.Event, list []attendees.Attendee) error {
	subject := fmt.Sprintf("Reminder: %s is coming up", event.Title)

	var errs []error
	for _, attendee := range list {
		err := n.send(ctx, attendee, event, subject)
		if err == nil {
			metrics.NotificationsSent.WithLabelValues(ChannelResend, "success").Inc()
			continue
		}
		metrics.NotificationsSent.WithLabelValues(ChannelResend, "error").Inc()
		errs = append(errs, fmt.Errorf("notify %s: %w", attendee.ID, err))

		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			break
		}
	}
	return errors.Join(errs...)
}

func (n *ResendNotifier) send(ctx context.Context, attendee attendees.Attendee, event events.Event, subject string) error {
	var body bytes.Buffer
	err := reminderTemplate.Execute(&body, reminderData{
		Name:        attendee.Name,
		Title:       event.Title,
		Date:        event.Date,
		Location:    event.Location,
		Description: event.Description,
	})
	if err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}

	sent, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{attendee.Email},
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			n.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("remaining", rateLimitErr.Remaining).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
			return fmt.Errorf("email rate limit exceeded (limit: %s, resets in: %s seconds): %w",
				rateLimitErr.Limit, rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}

	n.logger.Info().
		Str("email_id", sent.Id).
		Str("event_id", event.ID).
		Str("attendee_id", attendee.ID).
		Msg("reminder sent")
	return nil
}
