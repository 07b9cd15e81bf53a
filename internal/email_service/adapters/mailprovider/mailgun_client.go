package mailprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hookbridge/hookbridge/internal/email_service/app"
	"github.com/hookbridge/hookbridge/internal/email_service/domain"
)

// MailgunClient sends reply emails through the provider's per-domain
// messages endpoint. Credentials are held for the client's lifetime and
// never logged.
type MailgunClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiBase    string // e.g. https://api.mailgun.net/v3
	domain     string
	apiKey     string

	senderName    string
	senderAddress string
	replyTo       string
}

func NewMailgunClient(logger *slog.Logger, apiBase, mailDomain, apiKey, senderName, senderAddress, replyTo string, httpClient *http.Client) *MailgunClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &MailgunClient{
		logger:        logger.With("provider", "mailgun"),
		httpClient:    httpClient,
		apiBase:       strings.TrimSuffix(apiBase, "/"),
		domain:        mailDomain,
		apiKey:        apiKey,
		senderName:    senderName,
		senderAddress: senderAddress,
		replyTo:       replyTo,
	}
}

func (c *MailgunClient) GetName() string {
	return "mailgun"
}

// MailgunSendResponse is the provider's success payload.
type MailgunSendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Reply sends text back to the sender of original, threading it onto the
// original message via In-Reply-To and References headers. Returns the
// provider-assigned id of the new message.
//
// Sender identity and reply-to address must be configured; otherwise the
// call fails before any network request is issued.
func (c *MailgunClient) Reply(ctx context.Context, original *domain.InboundEmail, text string) (string, error) {
	if c.senderAddress == "" {
		app.ReplyRequestsCounter.WithLabelValues("config_error").Inc()
		return "", domain.ErrSenderNotConfigured
	}
	if c.replyTo == "" {
		app.ReplyRequestsCounter.WithLabelValues("config_error").Inc()
		return "", domain.ErrReplyToNotConfigured
	}

	from := c.senderAddress
	if c.senderName != "" {
		from = fmt.Sprintf("%s <%s>", c.senderName, c.senderAddress)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := [][2]string{
		{"from", from},
		{"to", original.From},
		{"subject", domain.ReplySubject(original.Subject)},
		{"text", text},
		{"h:Reply-To", c.replyTo},
		{"h:In-Reply-To", original.MessageID},
	}
	if len(original.References) > 0 {
		fields = append(fields, [2]string{"h:References", strings.Join(original.References, " ")})
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return "", fmt.Errorf("failed to build reply form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build reply form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", c.apiBase, c.domain)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create reply request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.SetBasicAuth("api", c.apiKey)

	c.logger.DebugContext(ctx, "Sending reply to Mailgun", "to", original.From, "in_reply_to", original.MessageID)

	timer := prometheus.NewTimer(app.ProviderRequestDurationHist.WithLabelValues(c.GetName()))
	httpResp, err := c.httpClient.Do(httpReq)
	timer.ObserveDuration()
	if err != nil {
		app.ReplyRequestsCounter.WithLabelValues("provider_error").Inc()
		c.logger.ErrorContext(ctx, "Failed to send reply request to Mailgun", "error", err)
		return "", fmt.Errorf("failed to send reply to Mailgun: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		app.ReplyRequestsCounter.WithLabelValues("provider_error").Inc()
		return "", fmt.Errorf("failed to read Mailgun response (status %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		app.ReplyRequestsCounter.WithLabelValues("provider_error").Inc()
		c.logger.WarnContext(ctx, "Mailgun reply failed", "status_code", httpResp.StatusCode, "body", string(respBody))
		return "", fmt.Errorf("mailgun reply failed: status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var sendResp MailgunSendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		app.ReplyRequestsCounter.WithLabelValues("provider_error").Inc()
		c.logger.WarnContext(ctx, "Mailgun replied 2xx but response body did not parse", "status_code", httpResp.StatusCode, "error", err)
		return "", fmt.Errorf("failed to parse Mailgun response (status %d): %w", httpResp.StatusCode, err)
	}

	app.ReplyRequestsCounter.WithLabelValues("sent").Inc()
	c.logger.InfoContext(ctx, "Reply sent via Mailgun", "provider_message_id", sendResp.ID, "to", original.From)
	return sendResp.ID, nil
}
