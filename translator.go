package ernie

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Translator dispatches translation requests to the ERNIE chat endpoint.
type Translator struct {
	tokens   TokenSource
	provider ChatProvider
	cache    ResultCache
	logger   *slog.Logger
}

// TokenSource supplies a valid access token for a key pair.
type TokenSource interface {
	Token(ctx context.Context, apiKey, secretKey string) (string, error)
}

// ChatProvider posts a payload to a fully composed endpoint URL and returns
// the translated text.
type ChatProvider interface {
	Complete(ctx context.Context, endpoint string, payload *Payload) (string, error)
}

// ResultCache stores finished translations keyed by RequestKey.
type ResultCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache enables memoisation of finished translations. A hit skips both
// token resolution and the provider call.
func WithCache(cache ResultCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithLogger sets the structured logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranslator creates a Translator resolving tokens from tokens and sending
// requests through provider.
func NewTranslator(tokens TokenSource, provider ChatProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		tokens:   tokens,
		provider: provider,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Translate translates text into the target language to. from and detect are
// the host's source and detected languages; the prompt does not use them.
//
// Validation runs before any network access, so a bad parameter bag never
// costs a token fetch. The result is either a non-empty translation or an
// error, never both.
func (t *Translator) Translate(ctx context.Context, text, from, to, detect string, params map[string]string) (string, error) {
	log := t.logger.With("request_id", uuid.NewString())

	req, err := Build(text, to, params)
	if err != nil {
		log.Debug("request rejected", "error", err)
		return "", err
	}

	log = log.With("model", req.Params.Model, "from", from, "to", to, "detected", detect)

	var key string
	if t.cache != nil {
		key, err = RequestKey(req)
		if err != nil {
			log.Warn("cache key unavailable", "error", err)
		} else if cached, ok := t.cache.Get(key); ok {
			log.Debug("result cache hit")
			return cached, nil
		}
	}

	token, err := t.tokens.Token(ctx, req.Params.APIKey, req.Params.SecretKey)
	if err != nil {
		log.Error("access token unavailable", "error", err)
		return "", err
	}

	start := time.Now()
	result, err := t.provider.Complete(ctx, Endpoint(req.Params.RequestURL, req.Params.Model, token), req.Payload)
	if err != nil {
		log.Error("translation failed", "error", err, "elapsed", time.Since(start))
		return "", err
	}
	log.Info("translated", "chars", len([]rune(text)), "elapsed", time.Since(start))

	if key != "" {
		if err := t.cache.Set(key, result); err != nil {
			log.Warn("result cache write failed", "error", err)
		}
	}

	return result, nil
}

// Endpoint composes the chat URL for model. A base URL without an http or
// https scheme is given https.
func Endpoint(requestURL, model, token string) string {
	u := requestURL + model + "?access_token=" + token
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + u
	}
	return u
}
