package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const apiKeyHeader = "X-API-Key"

type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend api error: %s", e.Status)
	}
	return fmt.Sprintf("backend api error: %s: %s", e.Status, e.Body)
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
}

// Client talks to the hosted backend-as-a-service REST API.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// a failed POST may already have been stored; resending it would
			// create a second sale
			if resp != nil && resp.Request != nil && resp.Request.Method == http.MethodPost {
				return false
			}
			if err != nil {
				return true
			}
			return resp != nil && (resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500)
		})

	if cfg.APIKey != "" {
		httpClient.SetHeader(apiKeyHeader, cfg.APIKey)
	}

	return &Client{http: httpClient, logger: logger.Named("backend")}
}

// CreateSale posts the sale once; the backend assigns id and invoice number.
func (c *Client) CreateSale(ctx context.Context, sale models.Sale) (models.Sale, error) {
	var created models.Sale
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sale).
		SetResult(&created).
		Post("/sales")
	if err != nil {
		return models.Sale{}, fmt.Errorf("backend request: %w", err)
	}
	if resp.IsError() {
		return models.Sale{}, apiErrorFromResponse(resp)
	}
	if created.InvoiceNumber == "" {
		return models.Sale{}, fmt.Errorf("backend returned sale without invoice number")
	}
	c.logger.Debug("sale created", zap.String("invoice", created.InvoiceNumber), zap.Int("items", len(created.Items)))
	return created, nil
}

func (c *Client) GetSale(ctx context.Context, invoiceNumber string) (models.Sale, error) {
	var sale models.Sale
	if err := c.doGet(ctx, "/sales/"+url.PathEscape(invoiceNumber), nil, &sale); err != nil {
		return models.Sale{}, err
	}
	return sale, nil
}

func (c *Client) ListSales(ctx context.Context, storeID string, from, to time.Time) ([]models.Sale, error) {
	var resp listResponse[models.Sale]
	query := map[string]string{
		"storeId": storeID,
		"from":    from.Format(time.RFC3339),
		"to":      to.Format(time.RFC3339),
	}
	if err := c.doGet(ctx, "/sales", query, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []models.Sale{}, nil
	}
	return resp.Items, nil
}

func (c *Client) GetStore(ctx context.Context, storeID string) (models.Store, error) {
	var st models.Store
	if err := c.doGet(ctx, "/stores/"+url.PathEscape(storeID), nil, &st); err != nil {
		return models.Store{}, err
	}
	return st, nil
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	var cu models.Customer
	if err := c.doGet(ctx, "/customers/"+url.PathEscape(customerID), nil, &cu); err != nil {
		return models.Customer{}, err
	}
	return cu, nil
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func (c *Client) doGet(ctx context.Context, path string, query map[string]string, result any) error {
	req := c.http.R().SetContext(ctx).SetResult(result)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	if resp.IsError() {
		return apiErrorFromResponse(resp)
	}
	return nil
}

func apiErrorFromResponse(resp *resty.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       strings.TrimSpace(resp.String()),
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error())
	}
	return apiErr
}

var _ Backend = (*Client)(nil)
