package provider

import (
	"context"
	"sort"
	"strings"
)

// MockProvider is a mock chat provider for testing and dry runs.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Err          error             // Returned instead of a translation when set
	CallCount    int               // Number of times Complete was called
	LastEndpoint string            // Endpoint of the last call
	LastPayload  *Payload          // Payload of the last call
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"你好，世界！": "Hello, world!",
			"再见，小明":  "Bye, Xiaoming.",
		},
	}
}

// Complete looks up the source text embedded in the last message. Unknown
// text comes back bracketed.
func (m *MockProvider) Complete(ctx context.Context, endpoint string, payload *Payload) (string, error) {
	m.CallCount++
	m.LastEndpoint = endpoint
	m.LastPayload = payload

	if m.Err != nil {
		return "", m.Err
	}

	var last string
	if n := len(payload.Messages); n > 0 {
		last = payload.Messages[n-1].Content
	}
	keys := make([]string, 0, len(m.Translations))
	for src := range m.Translations {
		keys = append(keys, src)
	}
	sort.Strings(keys)
	for _, src := range keys {
		if strings.Contains(last, src) {
			return m.Translations[src], nil
		}
	}
	return "[" + last + "]", nil
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.CallCount = 0
	m.LastEndpoint = ""
	m.LastPayload = nil
}

// Verify MockProvider implements ChatProvider
var _ ChatProvider = (*MockProvider)(nil)
