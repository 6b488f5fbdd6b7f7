package mdm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/assetflow/assetflow_backend/utils"
)

// Device is one managed handset as the MDM provider reports it.
type Device struct {
	SerialNumber string `json:"serial_number"`
	UserName     string `json:"user_name"`
	Model        string `json:"model"`
	LastSeen     string `json:"last_seen"`
}

type devicesResponse struct {
	Devices []Device `json:"devices"`
}

// Client fetches the managed-device list from the MDM provider. Requests are
// idempotent GETs, so transient failures are retried with exponential backoff.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

func NewClient() *Client {
	return &Client{
		baseURL:    os.Getenv("MDM_BASE_URL"),
		token:      os.Getenv("MDM_API_TOKEN"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
	}
}

func NewClientWith(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, httpClient: httpClient, maxRetries: 3}
}

// ListDevices pulls the full device inventory from the provider.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", utils.ErrorExternalTimeout, ctx.Err())
			case <-time.After(backoff):
			}
		}

		devices, retryable, err := c.listDevicesOnce(ctx)
		if err == nil {
			return devices, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) listDevicesOnce(ctx context.Context) ([]Device, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/devices", nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", utils.ErrorExternalError, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, true, fmt.Errorf("%w: %v", utils.ErrorExternalTimeout, err)
		}
		return nil, true, fmt.Errorf("%w: %v", utils.ErrorExternalError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("%w: mdm returned %d", utils.ErrorExternalError, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("%w: mdm returned %d", utils.ErrorExternalError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", utils.ErrorExternalError, err)
	}

	var parsed devicesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// some tenants return a bare array
		var list []Device
		if err2 := json.Unmarshal(body, &list); err2 != nil {
			return nil, false, fmt.Errorf("%w: invalid mdm payload: %v", utils.ErrorExternalError, err)
		}
		return list, false, nil
	}
	return parsed.Devices, false, nil
}
