package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ricetradesolutions/riceledger/internal/config"
)

// Client exposes the outbound notification operations used by the application.
type Client interface {
	SendNotification(ctx context.Context, req Notification) error
}

// APIClient is a resty-backed implementation of Client that posts
// notifications to a configured webhook endpoint.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a webhook notifier from the provided configuration values.
func NewClient(cfg config.NotifierConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.WebhookURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
	}
}

// Notification represents a simple title-plus-body payload.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// apiError represents a webhook endpoint error payload.
type apiError struct {
	Error string `json:"error"`
}

func (c *APIClient) SendNotification(ctx context.Context, req Notification) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetError(apiErr).
		Post("")
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		if apiErr != nil {
			message = apiErr.Error
		}
		return fmt.Errorf("webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
