package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

// HTTPNotificationClient sends order confirmations through the
// notification service.
type HTTPNotificationClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPNotificationClient creates a new HTTP-based notification client.
func NewHTTPNotificationClient(cfg config.ServiceConfig) *HTTPNotificationClient {
	return &HTTPNotificationClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logging.NewLogger("notification-client"),
	}
}

type notificationRequest struct {
	Type      string            `json:"type"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SendOrderConfirmation notifies the customer that their order was placed.
func (c *HTTPNotificationClient) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	payload := notificationRequest{
		Type:      "order_confirmation",
		Recipient: order.UserID,
		Subject:   "Order Confirmed",
		Body:      fmt.Sprintf("Your order %s has been placed. Total: ₹%.2f", order.ID, order.Total.ToFloat()),
		Metadata: map[string]string{
			"order_id":       order.ID,
			"payment_method": string(order.PaymentMethod),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := c.baseURL + "/api/v1/notifications"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to send order confirmation", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}

	c.logger.Debug("Order confirmation sent", logging.Fields{"order_id": order.ID})
	return nil
}
