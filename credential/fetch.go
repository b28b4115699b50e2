package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/ernie"
)

// DefaultAuthURL is Baidu's OAuth token endpoint.
const DefaultAuthURL = "https://aip.baidubce.com/oauth/2.0/token"

// Fetcher obtains a new access token from the provider.
type Fetcher interface {
	Fetch(ctx context.Context, apiKey, secretKey string) (string, error)
}

// FetcherConfig holds configuration for the HTTP fetcher.
type FetcherConfig struct {
	AuthURL    string        // Token endpoint (default: DefaultAuthURL)
	Timeout    time.Duration // Request timeout (default: none beyond the client's)
	HTTPClient *http.Client  // Underlying client (optional)
}

// HTTPFetcher requests tokens with the client_credentials grant.
type HTTPFetcher struct {
	client  *resty.Client
	authURL string
}

// NewHTTPFetcher creates a fetcher for the configured token endpoint.
func NewHTTPFetcher(cfg FetcherConfig) *HTTPFetcher {
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

	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}

	return &HTTPFetcher{client: c, authURL: authURL}
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (r tokenResponse) describe() string {
	if r.ErrorDescription != "" {
		return r.Error + ": " + r.ErrorDescription
	}
	return r.Error
}

// Fetch posts the key pair to the token endpoint and returns access_token.
// The request is not retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, apiKey, secretKey string) (string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     apiKey,
			"client_secret": secretKey,
		}).
		Post(f.authURL)
	if err != nil {
		return "", &ernie.AuthError{Message: "token request failed", Cause: ernie.ScrubURL(err, "client_id", "client_secret")}
	}

	var body tokenResponse
	parseErr := json.Unmarshal(resp.Body(), &body)

	if !resp.IsSuccess() {
		msg := fmt.Sprintf("token endpoint returned %s", resp.Status())
		if parseErr == nil && body.Error != "" {
			msg += ": " + body.describe()
		}
		return "", &ernie.AuthError{Message: msg}
	}
	if parseErr != nil {
		return "", &ernie.AuthError{Message: "invalid token response", Cause: parseErr}
	}
	if body.AccessToken == "" {
		msg := "access_token not found in response"
		if body.Error != "" {
			msg += ": " + body.describe()
		}
		return "", &ernie.AuthError{Message: msg}
	}

	return body.AccessToken, nil
}

// Verify HTTPFetcher implements Fetcher
var _ Fetcher = (*HTTPFetcher)(nil)
