package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	twclient "github.com/twilio/twilio-go/client"

	emailhttp "github.com/hookbridge/hookbridge/internal/email_service/adapters/http"
	"github.com/hookbridge/hookbridge/internal/email_service/adapters/mailprovider"
	emaildomain "github.com/hookbridge/hookbridge/internal/email_service/domain"
	"github.com/hookbridge/hookbridge/internal/platform/config"
	"github.com/hookbridge/hookbridge/internal/platform/logger"
	smshttp "github.com/hookbridge/hookbridge/internal/sms_service/adapters/http"
	smsdomain "github.com/hookbridge/hookbridge/internal/sms_service/domain"
)

const serviceName = "webhook_gateway"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Webhook gateway starting...", "port", cfg.ServerPort)

	validate := validator.New()
	requestValidator := twclient.NewRequestValidator(cfg.TwilioAuthToken)

	// The gateway's own handlers log the inbound message and reply with the
	// configured auto-reply text (empty text means no reply for email, an
	// empty reply document for SMS). Library consumers plug in their own.
	smsHandler := smshttp.NewWebhookHandler(appLogger, validate, requestValidator, cfg.TwilioCallbackURL,
		func(ctx context.Context, msg smsdomain.Incoming) (string, error) {
			appLogger.InfoContext(ctx, "Inbound SMS received", "from", msg.From, "message_id", msg.MessageID)
			return cfg.SMSAutoReply, nil
		})

	mailClient := mailprovider.NewMailgunClient(appLogger,
		cfg.MailgunAPIBase, cfg.MailgunDomain, cfg.MailgunAPIKey,
		cfg.EmailSenderName, cfg.EmailSenderAddress, cfg.EmailReplyTo, nil)
	emailHandler := emailhttp.NewInboundHandler(appLogger, mailClient,
		func(ctx context.Context, msg *emaildomain.InboundEmail) (string, error) {
			appLogger.InfoContext(ctx, "Inbound email received", "from", msg.From, "message_id", msg.MessageID)
			return cfg.EmailAutoReply, nil
		})

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "Webhook gateway is healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks/sms", smsHandler.HandleInboundSMS)
	r.Post("/webhooks/email", emailHandler.HandleInboundEmail)

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.ServerPort), Handler: r}
	appLogger.Info(fmt.Sprintf("Webhook gateway listening on port %d", cfg.ServerPort))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	<-quitChan
	appLogger.Info("Shutdown signal received, shutting down HTTP server...")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	} else {
		appLogger.Info("HTTP server shut down gracefully.")
	}
	appLogger.Info("Webhook gateway shut down.")
}
