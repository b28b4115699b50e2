package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/ernie"
)

// ErnieProvider posts chat payloads to a composed ERNIE endpoint URL.
type ErnieProvider struct {
	client *resty.Client
}

// ErnieConfig holds configuration for the ERNIE provider.
type ErnieConfig struct {
	Timeout    time.Duration // Request timeout (default: none beyond the client's)
	HTTPClient *http.Client  // Underlying client (optional)
}

// NewErnieProvider creates a new ERNIE provider.
func NewErnieProvider(cfg ErnieConfig) *ErnieProvider {
	var c *resty.Client
	if cfg.HTTPClient != nil {
		c = resty.NewWithClient(cfg.HTTPClient)
	} else {
		c = resty.New()
	}
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	c.SetHeader("User-Agent", ernie.UserAgent())

	return &ErnieProvider{client: c}
}

// chatResponse is the subset of the chat response we read. ERNIE reports
// some failures with HTTP 200 and an error_code body.
type chatResponse struct {
	Result    json.RawMessage `json:"result"`
	ErrorCode int             `json:"error_code"`
	ErrorMsg  string          `json:"error_msg"`
}

// Complete posts payload to endpoint and returns the result field.
func (p *ErnieProvider) Complete(ctx context.Context, endpoint string, payload *Payload) (string, error) {
	body, err := payload.Encode()
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return "", &ernie.TransportError{
			Message: "chat request failed",
			Cause:   ernie.ScrubURL(err, "access_token"),
		}
	}

	if !resp.IsSuccess() {
		return "", &ernie.ResponseError{
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return parseResult(resp.StatusCode(), resp.Body())
}

// parseResult extracts a non-empty string result from a success body.
func parseResult(status int, body []byte) (string, error) {
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &ernie.ResponseError{
			StatusCode: status,
			Body:       string(body),
			Cause:      fmt.Errorf("decoding response: %w", err),
		}
	}

	var result string
	if len(out.Result) == 0 || json.Unmarshal(out.Result, &result) != nil || result == "" {
		return "", &ernie.ResponseError{
			StatusCode: status,
			Body:       string(body),
			Code:       out.ErrorCode,
			Message:    out.ErrorMsg,
			Cause:      ernie.ErrMissingResult,
		}
	}

	return result, nil
}

// Verify ErnieProvider implements ChatProvider
var _ ChatProvider = (*ErnieProvider)(nil)
