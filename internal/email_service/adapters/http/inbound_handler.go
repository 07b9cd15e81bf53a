package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	chi_middleware "github.com/go-chi/chi/v5/middleware" // For GetReqID

	"github.com/hookbridge/hookbridge/internal/email_service/domain"
)

const MaxRequestBodySize = 10 << 20 // 10 MB; inbound mail can carry sizeable bodies

// ReplySender is the outbound side the handler needs. Satisfied by
// mailprovider.MailgunClient; tests substitute a double.
type ReplySender interface {
	Reply(ctx context.Context, original *domain.InboundEmail, text string) (string, error)
}

// InboundHandler terminates the email provider's inbound webhook on
// behalf of the parsing layer, which itself only consumes already-parsed
// form values.
type InboundHandler struct {
	logger  *slog.Logger
	replier ReplySender
	handler domain.Handler
}

func NewInboundHandler(logger *slog.Logger, replier ReplySender, handler domain.Handler) *InboundHandler {
	return &InboundHandler{
		logger:  logger.With("handler", "email_inbound"),
		replier: replier,
		handler: handler,
	}
}

// HandleInboundEmail receives inbound email webhook callbacks, parses the
// multipart form, invokes the user handler and sends any reply it returns.
func (h *InboundHandler) HandleInboundEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi_middleware.GetReqID(ctx)
	logger := h.logger.With("request_id", requestID)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "Method not allowed for email webhook", "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := r.ParseMultipartForm(MaxRequestBodySize); err != nil {
		logger.WarnContext(ctx, "Failed to parse email webhook form", "error", err)
		http.Error(w, "Invalid multipart form body", http.StatusBadRequest)
		return
	}

	msg := domain.ParseInbound(r.Form)
	logger.InfoContext(ctx, "Received inbound email", "from", msg.From, "subject", msg.Subject, "message_id", msg.MessageID)

	reply, err := h.handler(ctx, msg)
	if err != nil {
		logger.ErrorContext(ctx, "Email handler failed", "error", err, "message_id", msg.MessageID)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	if reply != "" {
		id, err := h.replier.Reply(ctx, msg, reply)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to send email reply", "error", err, "message_id", msg.MessageID)
			http.Error(w, "Failed to send reply", http.StatusBadGateway)
			return
		}
		logger.InfoContext(ctx, "Email reply sent", "provider_message_id", id, "thread_root", msg.ThreadRootMessageID())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "Inbound email processed"})
}
