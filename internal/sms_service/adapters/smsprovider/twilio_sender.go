package smsprovider

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/hookbridge/hookbridge/internal/sms_service/app"
)

// TwilioSender sends outbound SMS through an injected provider SDK handle.
// The handle is treated as an opaque capability; it is never constructed here.
type TwilioSender struct {
	logger *slog.Logger
	api    MessageCreator
}

func NewTwilioSender(logger *slog.Logger, api MessageCreator) *TwilioSender {
	return &TwilioSender{
		logger: logger.With("provider", "twilio"),
		api:    api,
	}
}

func (s *TwilioSender) GetName() string {
	return "twilio"
}

// Send issues an outbound message creation call. Provider failures
// (network error, auth error, invalid number) are propagated to the
// caller unmodified; there is no internal retry.
func (s *TwilioSender) Send(ctx context.Context, message, from, to string) (*openapi.ApiV2010Message, error) {
	s.logger.InfoContext(ctx, "TwilioSender: Send called", "from", from, "to", to, "content_length", len(message))

	timer := prometheus.NewTimer(app.ProviderRequestDurationHist.WithLabelValues(s.GetName()))
	defer timer.ObserveDuration()

	params := &openapi.CreateMessageParams{}
	params.SetBody(message)
	params.SetFrom(from)
	params.SetTo(to)

	record, err := s.api.CreateMessage(params)
	if err != nil {
		s.logger.ErrorContext(ctx, "TwilioSender: send failed", "error", err, "to", to)
		return nil, err
	}

	sid := ""
	if record.Sid != nil {
		sid = *record.Sid
	}
	s.logger.InfoContext(ctx, "TwilioSender: message created", "provider_message_id", sid, "to", to)
	return record, nil
}
