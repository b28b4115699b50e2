package ernie_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaguanLabs/ernie"
	"github.com/ZaguanLabs/ernie/cache"
	"github.com/ZaguanLabs/ernie/credential"
	"github.com/ZaguanLabs/ernie/provider"
)

// Integration tests using all real components against a fake Baidu API

type fakeBaidu struct {
	srv        *httptest.Server
	tokenCalls atomic.Int32
	chatCalls  atomic.Int32
	lastBody   atomic.Value
}

func newFakeBaidu(t *testing.T) *fakeBaidu {
	t.Helper()
	f := &fakeBaidu{}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/2.0/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		q := r.URL.Query()
		if q.Get("grant_type") != "client_credentials" || q.Get("client_id") != "ak" || q.Get("client_secret") != "sk" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_client","error_description":"unknown client id"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"tok-1","expires_in":2592000}`)
	})
	mux.HandleFunc("/chat/ernie-lite-8k", func(w http.ResponseWriter, r *http.Request) {
		f.chatCalls.Add(1)
		if r.URL.Query().Get("access_token") != "tok-1" {
			_, _ = io.WriteString(w, `{"error_code":110,"error_msg":"Access token invalid or no longer valid"}`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(body))
		_, _ = io.WriteString(w, `{"id":"as-1","result":"Hello, world!","is_truncated":false}`)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBaidu) bag() map[string]string {
	return map[string]string{
		ernie.ParamAPIKey:     "ak",
		ernie.ParamSecretKey:  "sk",
		ernie.ParamModel:      "ernie-lite-8k",
		ernie.ParamRequestURL: f.srv.URL + "/chat/",
	}
}

func (f *fakeBaidu) translator(tokenPath string, opts ...ernie.TranslatorOption) *ernie.Translator {
	tokens := credential.NewCache(
		credential.NewFileStore(tokenPath),
		credential.NewHTTPFetcher(credential.FetcherConfig{AuthURL: f.srv.URL + "/oauth/2.0/token"}),
	)
	return ernie.NewTranslator(tokens, provider.NewErnieProvider(provider.ErnieConfig{Timeout: 5 * time.Second}), opts...)
}

func TestIntegration_ColdCache(t *testing.T) {
	f := newFakeBaidu(t)
	tokenPath := filepath.Join(t.TempDir(), "access_token.json")

	got, err := f.translator(tokenPath).Translate(context.Background(), "你好，世界！", "auto", "en", "", f.bag())
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Hello, world!" {
		t.Errorf("expected %q, got %q", "Hello, world!", got)
	}

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	var rec credential.Token
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("token file is not JSON: %v", err)
	}
	if rec.AccessToken != "tok-1" {
		t.Errorf("expected cached token tok-1, got %q", rec.AccessToken)
	}
	if d := time.Now().Unix() - int64(rec.Timestamp); d < 0 || d > 60 {
		t.Errorf("timestamp %d is not recent", rec.Timestamp)
	}

	body, _ := f.lastBody.Load().(string)
	if !strings.Contains(body, `"stream":false`) || !strings.Contains(body, "below to en,") {
		t.Errorf("unexpected payload: %s", body)
	}
}

func TestIntegration_WarmCacheSkipsAuth(t *testing.T) {
	f := newFakeBaidu(t)
	tokenPath := filepath.Join(t.TempDir(), "access_token.json")

	rec, _ := json.Marshal(credential.Stamp("tok-1", time.Now().Add(-time.Hour)))
	if err := os.WriteFile(tokenPath, rec, 0o600); err != nil {
		t.Fatal(err)
	}

	tr := f.translator(tokenPath)
	for i := 0; i < 2; i++ {
		if _, err := tr.Translate(context.Background(), "你好，世界！", "auto", "en", "", f.bag()); err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
	}

	if n := f.tokenCalls.Load(); n != 0 {
		t.Errorf("expected no token requests, got %d", n)
	}
	if n := f.chatCalls.Load(); n != 2 {
		t.Errorf("expected 2 chat requests, got %d", n)
	}
}

func TestIntegration_ExpiredTokenRefreshed(t *testing.T) {
	f := newFakeBaidu(t)
	tokenPath := filepath.Join(t.TempDir(), "access_token.json")

	old := credential.Token{AccessToken: "stale", Timestamp: uint64(time.Now().Unix() - credential.MaxAge - 10)}
	rec, _ := json.Marshal(old)
	if err := os.WriteFile(tokenPath, rec, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := f.translator(tokenPath).Translate(context.Background(), "hi", "auto", "en", "", f.bag()); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if n := f.tokenCalls.Load(); n != 1 {
		t.Errorf("expected 1 token request, got %d", n)
	}

	data, _ := os.ReadFile(tokenPath)
	if !strings.Contains(string(data), `"tok-1"`) {
		t.Errorf("token file not refreshed: %s", data)
	}
}

func TestIntegration_BadCredentials(t *testing.T) {
	f := newFakeBaidu(t)
	tokenPath := filepath.Join(t.TempDir(), "access_token.json")

	bag := f.bag()
	bag[ernie.ParamSecretKey] = "wrong"
	_, err := f.translator(tokenPath).Translate(context.Background(), "hi", "auto", "en", "", bag)

	var authErr *ernie.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid_client") {
		t.Errorf("expected provider error in message, got %v", err)
	}
	if f.chatCalls.Load() != 0 {
		t.Error("chat endpoint should not be called")
	}
	if _, statErr := os.Stat(tokenPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("no token file should be written on auth failure")
	}
}

func TestIntegration_ProviderErrorCode(t *testing.T) {
	f := newFakeBaidu(t)
	tokenPath := filepath.Join(t.TempDir(), "access_token.json")

	rec, _ := json.Marshal(credential.Stamp("revoked", time.Now()))
	if err := os.WriteFile(tokenPath, rec, 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := f.translator(tokenPath).Translate(context.Background(), "hi", "auto", "en", "", f.bag())

	var respErr *ernie.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %v", err)
	}
	if respErr.Code != 110 {
		t.Errorf("expected error_code 110, got %d", respErr.Code)
	}
	if !errors.Is(err, ernie.ErrMissingResult) {
		t.Errorf("expected ErrMissingResult, got %v", err)
	}
}

func TestIntegration_ResultCache(t *testing.T) {
	f := newFakeBaidu(t)
	tokenPath := filepath.Join(t.TempDir(), "access_token.json")
	c := cache.NewInMemoryCache(3600)

	tr := f.translator(tokenPath, ernie.WithCache(c))
	for i := 0; i < 3; i++ {
		got, err := tr.Translate(context.Background(), "你好，世界！", "auto", "en", "", f.bag())
		if err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
		if got != "Hello, world!" {
			t.Errorf("unexpected result %q", got)
		}
	}

	if n := f.chatCalls.Load(); n != 1 {
		t.Errorf("expected 1 chat request, got %d", n)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 cached entry, got %d", c.Len())
	}
}

func TestIntegration_MockProvider(t *testing.T) {
	p := provider.NewMockProvider()
	tokens := credential.NewCache(
		credential.NewFileStore(filepath.Join(t.TempDir(), "access_token.json")),
		fixedFetcher("tok"),
	)

	tr := ernie.NewTranslator(tokens, p)
	got, err := tr.Translate(context.Background(), "再见，小明", "auto", "English", "", map[string]string{
		ernie.ParamAPIKey:    "ak",
		ernie.ParamSecretKey: "sk",
		ernie.ParamModel:     "ernie-speed-8k",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Bye, Xiaoming." {
		t.Errorf("unexpected result %q", got)
	}
	if !strings.HasSuffix(p.LastEndpoint, "ernie-speed-8k?access_token=tok") {
		t.Errorf("unexpected endpoint %q", p.LastEndpoint)
	}
}

type fixedFetcher string

func (f fixedFetcher) Fetch(ctx context.Context, apiKey, secretKey string) (string, error) {
	return string(f), nil
}
