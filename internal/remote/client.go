package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is an HTTP client for the authoritative inventory service. It is
// the only code in the engine that talks to the network; every other
// component receives a *Client (or an interface over it) explicitly.
type Client struct {
	BaseURL  string
	APIKey   string
	DeviceID string
	HTTP     *http.Client
}

// New creates a remote client.
func New(baseURL, apiKey, deviceID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		DeviceID: deviceID,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// --- Mutation submission types ---

// TransactionRequest is the body for POST /v1/transactions.
type TransactionRequest struct {
	IdempotencyKey string  `json:"idempotency_key"`
	ItemID         string  `json:"item_id"`
	Quantity       float64 `json:"quantity"`
	UserID         string  `json:"user_id"`
	Note           *string `json:"note,omitempty"`
	FromLocation   *string `json:"from_location,omitempty"`
	ToLocation     *string `json:"to_location,omitempty"`
	EventAt        string  `json:"event_at"`
}

// ProductionRequest is the body for POST /v1/productions.
type ProductionRequest struct {
	IdempotencyKey string   `json:"idempotency_key"`
	ItemID         string   `json:"item_id"`
	Quantity       float64  `json:"quantity"`
	UserID         string   `json:"user_id"`
	EventAt        string   `json:"event_at"`
	Waste          *float64 `json:"waste,omitempty"`
	WasteReason    *string  `json:"waste_reason,omitempty"`
	Note           *string  `json:"note,omitempty"`
}

// MutationResponse is the confirmed remote row for a submitted mutation.
type MutationResponse struct {
	ID        string  `json:"id"`
	ItemID    string  `json:"item_id"`
	Quantity  float64 `json:"quantity"`
	CreatedAt string  `json:"created_at"`
}

// --- Reference data types ---

// ItemResponse is one inventory item from GET /v1/items.
type ItemResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Barcode   string  `json:"barcode"`
	Unit      string  `json:"unit"`
	Stock     float64 `json:"stock"`
	UpdatedAt string  `json:"updated_at"`
}

// TargetResponse is one production target from GET /v1/targets.
type TargetResponse struct {
	ID        string  `json:"id"`
	ItemID    string  `json:"item_id"`
	Quantity  float64 `json:"quantity"`
	Date      string  `json:"date,omitempty"`
	Weekday   *int    `json:"weekday,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

// RecentEventResponse is one completed production from GET /v1/productions/recent.
type RecentEventResponse struct {
	ID        string  `json:"id"`
	ItemID    string  `json:"item_id"`
	Quantity  float64 `json:"quantity"`
	EventDate string  `json:"event_date"`
	UpdatedAt string  `json:"updated_at"`
}

// FailureRecordRequest is the body for POST /v1/sync-failures.
type FailureRecordRequest struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
	UserID  string          `json:"user_id"`
	Status  string          `json:"status"`
}

// HealthResponse is the response from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// --- Methods ---

// SubmitTransaction records one inventory transaction. The server treats a
// resubmission carrying an already-seen idempotency key as a duplicate and
// answers with a unique-violation error; callers map that to success.
func (c *Client) SubmitTransaction(req *TransactionRequest) (*MutationResponse, error) {
	var resp MutationResponse
	if err := c.do("POST", "/v1/transactions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitProduction records one production event.
func (c *Client) SubmitProduction(req *ProductionRequest) (*MutationResponse, error) {
	var resp MutationResponse
	if err := c.do("POST", "/v1/productions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateFailureRecord files a rejected mutation for operator review.
func (c *Client) CreateFailureRecord(req *FailureRecordRequest) error {
	return c.do("POST", "/v1/sync-failures", req, nil)
}

// FetchItems downloads the full item list for the device's store.
func (c *Client) FetchItems() ([]ItemResponse, error) {
	var resp []ItemResponse
	if err := c.do("GET", "/v1/items", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FetchTargets downloads production targets applicable to the given day.
func (c *Client) FetchTargets(day string) ([]TargetResponse, error) {
	params := url.Values{}
	params.Set("day", day)
	var resp []TargetResponse
	if err := c.do("GET", "/v1/targets?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FetchRecentEvents downloads completed productions since the given date.
func (c *Client) FetchRecentEvents(sinceDate string) ([]RecentEventResponse, error) {
	params := url.Values{}
	params.Set("since", sinceDate)
	var resp []RecentEventResponse
	if err := c.do("GET", "/v1/productions/recent?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Ping is the cheapest authenticated round trip the service offers. Used
// only as a reachability oracle.
func (c *Client) Ping() error {
	var resp HealthResponse
	return c.do("GET", "/healthz", nil, &resp)
}

// --- HTTP plumbing ---

// do executes one request and decodes the response exactly once at this
// boundary. Error responses become classified *APIError values; transport
// failures become ClassUnreachable. Nothing above this layer parses codes.
func (c *Client) do(method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.DeviceID != "" {
		req.Header.Set("X-Device-ID", c.DeviceID)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &APIError{Class: ClassUnreachable, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Class: ClassUnreachable, Message: err.Error()}
	}

	if resp.StatusCode >= 400 {
		return classifyResponse(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
