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

// HTTPUserClient pushes delivery contact updates to the user service.
// The update is best-effort from the checkout's point of view: a failure
// here never rolls back the order.
type HTTPUserClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPUserClient creates a new HTTP-based user client.
func NewHTTPUserClient(cfg config.ServiceConfig) *HTTPUserClient {
	return &HTTPUserClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logging.NewLogger("user-client"),
	}
}

// UpdateDeliveryProfile saves the delivery contact captured at checkout to
// the user's profile.
func (c *HTTPUserClient) UpdateDeliveryProfile(ctx context.Context, userID string, contact models.DeliveryContact) error {
	c.logger.Debug("Updating delivery profile", logging.Fields{"user_id": userID})

	body, err := json.Marshal(contact)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/users/%s/delivery-profile", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to update delivery profile", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	c.logger.Debug("Delivery profile updated", logging.Fields{"user_id": userID})
	return nil
}
