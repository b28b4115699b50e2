// Package plugin is the host-facing entry point: it wires the file token
// cache, the token fetcher and the ERNIE provider into a Translator.
package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaguanLabs/ernie"
	"github.com/ZaguanLabs/ernie/credential"
	"github.com/ZaguanLabs/ernie/provider"
)

// ID is the plugin identifier the host installs us under.
const ID = "[plugin].com.pot-app.baidu-ernie-free"

// TokenFile is the name of the cached credential file.
const TokenFile = "access_token.json"

// Config holds the wiring options. Only TokenPath is required.
type Config struct {
	TokenPath  string             // Credential cache file; its directory must exist
	AuthURL    string             // Token endpoint (default: credential.DefaultAuthURL)
	Timeout    time.Duration      // Per-request timeout (default: none)
	HTTPClient *http.Client       // Shared HTTP client (optional)
	Cache      ernie.ResultCache  // Result cache (optional)
	Logger     *slog.Logger       // Logger (default: slog.Default())
	Provider   ernie.ChatProvider // Overrides the ERNIE provider (optional)
}

// DefaultTokenPath returns the credential file location inside the host's
// plugin directory under the user config dir.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "com.pot-app.desktop", "plugins", "translate", ID, TokenFile), nil
}

// New builds a Translator from cfg.
func New(cfg Config) (*ernie.Translator, error) {
	if cfg.TokenPath == "" {
		return nil, fmt.Errorf("token path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens := credential.NewCache(
		credential.NewFileStore(cfg.TokenPath),
		credential.NewHTTPFetcher(credential.FetcherConfig{
			AuthURL:    cfg.AuthURL,
			Timeout:    cfg.Timeout,
			HTTPClient: cfg.HTTPClient,
		}),
		credential.WithLogger(logger),
	)

	chat := cfg.Provider
	if chat == nil {
		chat = provider.NewErnieProvider(provider.ErnieConfig{
			Timeout:    cfg.Timeout,
			HTTPClient: cfg.HTTPClient,
		})
	}

	opts := []ernie.TranslatorOption{ernie.WithLogger(logger)}
	if cfg.Cache != nil {
		opts = append(opts, ernie.WithCache(cfg.Cache))
	}

	return ernie.NewTranslator(tokens, chat, opts...), nil
}

// Translate is the host call contract. from and detect are passed through
// unused; the token is cached at DefaultTokenPath.
func Translate(text, from, to, detect string, params map[string]string) (string, error) {
	path, err := DefaultTokenPath()
	if err != nil {
		return "", err
	}

	t, err := New(Config{TokenPath: path})
	if err != nil {
		return "", err
	}

	return t.Translate(context.Background(), text, from, to, detect, params)
}
