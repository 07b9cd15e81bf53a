package http_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	emailhttp "github.com/hookbridge/hookbridge/internal/email_service/adapters/http"
	"github.com/hookbridge/hookbridge/internal/email_service/domain"
)

// MockReplySender is a test double for the outbound mail client.
type MockReplySender struct {
	mock.Mock
}

func (m *MockReplySender) Reply(ctx context.Context, original *domain.InboundEmail, text string) (string, error) {
	args := m.Called(ctx, original, text)
	return args.String(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newInboundRequest(t *testing.T, fields map[string]string) *http.Request {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, form.WriteField(key, value))
	}
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/webhooks/email", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req
}

func inboundFields() map[string]string {
	return map[string]string{
		"from":       "alice@example.com",
		"subject":    "Order #1",
		"Message-Id": "<id-1@example.com>",
		"body-plain": "where is my order?",
	}
}

func TestHandleInboundEmail_MethodNotAllowed(t *testing.T) {
	replier := new(MockReplySender)
	h := emailhttp.NewInboundHandler(discardLogger(), replier, func(ctx context.Context, msg *domain.InboundEmail) (string, error) {
		t.Fatal("handler must not be invoked")
		return "", nil
	})

	req := httptest.NewRequest(http.MethodGet, "/webhooks/email", nil)
	rr := httptest.NewRecorder()
	h.HandleInboundEmail(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	replier.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleInboundEmail_RepliesWithHandlerText(t *testing.T) {
	replier := new(MockReplySender)
	var got *domain.InboundEmail
	h := emailhttp.NewInboundHandler(discardLogger(), replier, func(ctx context.Context, msg *domain.InboundEmail) (string, error) {
		got = msg
		return "On its way!", nil
	})

	replier.On("Reply", mock.Anything, mock.Anything, "On its way!").Return("<new-id@example.com>", nil).Once()

	rr := httptest.NewRecorder()
	h.HandleInboundEmail(rr, newInboundRequest(t, inboundFields()))

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, got)
	assert.Equal(t, "alice@example.com", got.From)
	assert.Equal(t, "Order #1", got.Subject)
	assert.Equal(t, "<id-1@example.com>", got.MessageID)
	replier.AssertExpectations(t)
}

func TestHandleInboundEmail_EmptyReplySkipsSend(t *testing.T) {
	replier := new(MockReplySender)
	h := emailhttp.NewInboundHandler(discardLogger(), replier, func(ctx context.Context, msg *domain.InboundEmail) (string, error) {
		return "", nil
	})

	rr := httptest.NewRecorder()
	h.HandleInboundEmail(rr, newInboundRequest(t, inboundFields()))

	assert.Equal(t, http.StatusOK, rr.Code)
	replier.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleInboundEmail_ReplyFailureSurfacesBadGateway(t *testing.T) {
	replier := new(MockReplySender)
	h := emailhttp.NewInboundHandler(discardLogger(), replier, func(ctx context.Context, msg *domain.InboundEmail) (string, error) {
		return "On its way!", nil
	})

	replier.On("Reply", mock.Anything, mock.Anything, "On its way!").Return("", errors.New("mailgun reply failed: status 401")).Once()

	rr := httptest.NewRecorder()
	h.HandleInboundEmail(rr, newInboundRequest(t, inboundFields()))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to send reply")
	replier.AssertExpectations(t)
}

func TestHandleInboundEmail_HandlerError(t *testing.T) {
	replier := new(MockReplySender)
	h := emailhttp.NewInboundHandler(discardLogger(), replier, func(ctx context.Context, msg *domain.InboundEmail) (string, error) {
		return "", errors.New("downstream unavailable")
	})

	rr := httptest.NewRecorder()
	h.HandleInboundEmail(rr, newInboundRequest(t, inboundFields()))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	replier.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything)
}
