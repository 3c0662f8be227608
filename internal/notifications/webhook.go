// Package notifications pushes ledger events to a chat webhook.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultfolio/ledger-backend/internal/httputil"
	"github.com/vaultfolio/ledger-backend/internal/models"
)

type Sender struct {
	webhookURL string
	appName    string
	httpClient *http.Client
	retry      httputil.RetryConfig
	log        zerolog.Logger
}

func NewSender(webhookURL, appName string, logger zerolog.Logger) *Sender {
	if appName == "" {
		appName = "Vaultfolio"
	}
	return &Sender{
		webhookURL: webhookURL,
		appName:    appName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
		log: logger.With().Str("component", "notifications").Logger(),
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}

// Send posts a message to the webhook. Delivery failures are logged,
// never surfaced; notifications are best effort.
func (s *Sender) Send(msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.appName, msg)
	s.log.Info().Msg(formatted)

	if s.webhookURL == "" {
		return
	}

	body, err := json.Marshal(s.formatPayload(formatted))
	if err != nil {
		s.log.Error().Err(err).Msg("marshal webhook payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("webhook delivery failed after retries")
		return
	}
	resp.Body.Close()
}

// NotifyExecution formats and sends the result of one execution.
func (s *Sender) NotifyExecution(botName string, exec models.Execution) {
	if exec.Success {
		tx := ""
		if exec.TxRef != nil {
			tx = " tx=" + *exec.TxRef
		}
		s.Send(fmt.Sprintf("%s rebalanced: profit %+.2f USD%s", botName, exec.Profit, tx))
		return
	}
	reason := "unknown error"
	if exec.Error != nil {
		reason = *exec.Error
	}
	s.Send(fmt.Sprintf("%s execution FAILED: %s", botName, reason))
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.appName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.appName,
	}
}
