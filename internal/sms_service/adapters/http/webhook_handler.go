package http

import (
	"log/slog"
	"net/http"

	chi_middleware "github.com/go-chi/chi/v5/middleware" // For GetReqID
	"github.com/go-playground/validator/v10"
	twclient "github.com/twilio/twilio-go/client"

	"github.com/hookbridge/hookbridge/internal/sms_service/app"
	"github.com/hookbridge/hookbridge/internal/sms_service/domain"
)

const MaxRequestBodySize = 1 << 20 // 1 MB

// SignatureHeader is the provider's webhook signature header. Requests
// without it are rejected before anything else happens.
const SignatureHeader = "X-Twilio-Signature"

// InboundSMSRequest is the fixed webhook schema. The listed fields are
// required; geographic fields are optional and pass through untouched.
type InboundSMSRequest struct {
	MessageSid string `validate:"required"`
	AccountSid string `validate:"required"`
	From       string `validate:"required"`
	To         string `validate:"required"`
	Body       string `validate:"required"`

	FromCity    string
	FromState   string
	FromZip     string
	FromCountry string
}

// WebhookHandler terminates the provider's inbound SMS webhook:
// signature presence, schema validation, cryptographic verification,
// user handler invocation, reply markup rendering. Strictly in that order.
type WebhookHandler struct {
	logger           *slog.Logger
	validate         *validator.Validate
	requestValidator twclient.RequestValidator
	callbackURL      string // optional override; derived from the request when empty
	handler          domain.Handler
}

// NewWebhookHandler creates a WebhookHandler. The requestValidator must be
// built from the same auth token the provider signs webhooks with;
// callbackURL overrides request-derived URL reconstruction (needed behind
// proxies that rewrite the outer URL).
func NewWebhookHandler(logger *slog.Logger, validate *validator.Validate, requestValidator twclient.RequestValidator, callbackURL string, handler domain.Handler) *WebhookHandler {
	return &WebhookHandler{
		logger:           logger.With("handler", "sms_webhook"),
		validate:         validate,
		requestValidator: requestValidator,
		callbackURL:      callbackURL,
		handler:          handler,
	}
}

// HandleInboundSMS receives inbound SMS webhook callbacks from the provider.
func (h *WebhookHandler) HandleInboundSMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi_middleware.GetReqID(ctx)
	logger := h.logger.With("request_id", requestID)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "Method not allowed for SMS webhook", "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		logger.WarnContext(ctx, "SMS webhook rejected", "reason", domain.ErrMissingSignature)
		app.WebhookRequestsCounter.WithLabelValues("rejected_signature").Inc()
		http.Error(w, "Signature header is required", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "Failed to parse SMS webhook form body", "error", err)
		app.WebhookRequestsCounter.WithLabelValues("rejected_schema").Inc()
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	req := InboundSMSRequest{
		MessageSid:  r.PostForm.Get("MessageSid"),
		AccountSid:  r.PostForm.Get("AccountSid"),
		From:        r.PostForm.Get("From"),
		To:          r.PostForm.Get("To"),
		Body:        r.PostForm.Get("Body"),
		FromCity:    r.PostForm.Get("FromCity"),
		FromState:   r.PostForm.Get("FromState"),
		FromZip:     r.PostForm.Get("FromZip"),
		FromCountry: r.PostForm.Get("FromCountry"),
	}

	if err := h.validate.StructCtx(ctx, req); err != nil {
		logger.WarnContext(ctx, "SMS webhook failed schema validation", "error", err)
		app.WebhookRequestsCounter.WithLabelValues("rejected_schema").Inc()
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	if !h.requestValidator.Validate(h.requestURL(r), params, signature) {
		logger.WarnContext(ctx, "SMS webhook rejected", "reason", domain.ErrInvalidSignature, "message_sid", req.MessageSid)
		app.WebhookRequestsCounter.WithLabelValues("rejected_signature").Inc()
		http.Error(w, "Signature verification failed", http.StatusUnauthorized)
		return
	}

	logger.InfoContext(ctx, "SMS webhook verified", "message_sid", req.MessageSid, "from", req.From, "to", req.To)

	reply, err := h.handler(ctx, domain.Incoming{
		Message:   req.Body,
		From:      req.From,
		MessageID: req.MessageSid,
	})
	if err != nil {
		logger.ErrorContext(ctx, "SMS handler failed", "error", err, "message_sid", req.MessageSid)
		app.WebhookRequestsCounter.WithLabelValues("handler_error").Inc()
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	body, err := RenderMessagingResponse(reply)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to render reply markup", "error", err, "message_sid", req.MessageSid)
		app.WebhookRequestsCounter.WithLabelValues("handler_error").Inc()
		http.Error(w, "Failed to render reply", http.StatusInternalServerError)
		return
	}

	app.WebhookRequestsCounter.WithLabelValues("replied").Inc()
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.WarnContext(ctx, "Failed to write SMS webhook response", "error", err)
	}
}

// requestURL reconstructs the URL the provider signed. The configured
// override wins; otherwise the URL is rebuilt from the request, trusting
// X-Forwarded-Proto when a proxy terminated TLS.
func (h *WebhookHandler) requestURL(r *http.Request) string {
	if h.callbackURL != "" {
		return h.callbackURL
	}
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
