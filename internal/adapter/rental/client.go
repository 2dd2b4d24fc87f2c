package rental

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"rental-payment-service/config"
	"rental-payment-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client fetches rental details over HTTP from the rental service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a rental service HTTP client.
func NewClient(cfg config.RentalConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "rental_client").Logger(),
	}
}

// rentalResponse is the rental service's wire representation. Prices come
// across as decimal strings.
type rentalResponse struct {
	RentalID     uuid.UUID `json:"rental_id"`
	TenantUserID uuid.UUID `json:"tenant_user_id"`
	OwnerUserID  uuid.UUID `json:"owner_user_id"`
	Status       string    `json:"status"`
	MonthlyPrice string    `json:"monthly_price"`
}

// GetRentalDetails looks up a rental by ID. A 404 from the rental service
// yields (nil, nil).
func (c *Client) GetRentalDetails(ctx context.Context, rentalID uuid.UUID) (*domain.RentalDetails, error) {
	url := fmt.Sprintf("%s/api/v1/rentals/%s", c.baseURL, rentalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rental request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call rental service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("rental_id", rentalID.String()).
			Msg("Rental service returned unexpected status")
		return nil, fmt.Errorf("rental service status %d", resp.StatusCode)
	}

	var body rentalResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rental response: %w", err)
	}

	price, err := domain.ParseAmount(body.MonthlyPrice)
	if err != nil {
		return nil, fmt.Errorf("rental monthly price %q: %w", body.MonthlyPrice, err)
	}

	return &domain.RentalDetails{
		RentalID:     body.RentalID,
		TenantUserID: body.TenantUserID,
		OwnerUserID:  body.OwnerUserID,
		Status:       body.Status,
		MonthlyPrice: price,
	}, nil
}
