package bcb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/installment-ledger/internal/config"
	"github.com/Dan9191/installment-ledger/internal/models"
)

// Client handles integration with the Central Bank of Brazil time-series API
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// observation is one point of an SGS series
type observation struct {
	Date  string `json:"data"`  // Format: DD/MM/YYYY
	Value string `json:"valor"` // percent, dot decimal separator
}

// NewClient initializes a new BCB client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.BCBURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// sendRequest fetches the latest observation of the savings series
func (c *Client) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("BCB response: %s", string(body))

	return body, nil
}

// parseResponse extracts the most recent observation
func (c *Client) parseResponse(rawBody []byte) (*models.SavingsRate, error) {
	var points []observation
	if err := json.Unmarshal(rawBody, &points); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no savings rate data found")
	}

	latest := points[len(points)-1]
	date, err := time.Parse("02/01/2006", latest.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date %q: %w", latest.Date, err)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(latest.Value))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate %q: %w", latest.Value, err)
	}

	return &models.SavingsRate{
		Date:    date.Format("2006-01-02"),
		Percent: value.InexactFloat64(),
	}, nil
}

// GetSavingsRate retrieves the latest published monthly savings rate, in percent
func (c *Client) GetSavingsRate(ctx context.Context) (*models.SavingsRate, error) {
	body, err := c.sendRequest(ctx)
	if err != nil {
		return nil, err
	}

	rate, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Retrieved savings rate: %.4f%% (%s)", rate.Percent, rate.Date)
	return rate, nil
}
