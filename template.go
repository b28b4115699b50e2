package ernie

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Placeholders recognised in template message content.
const (
	PlaceholderTarget = "$to$"
	PlaceholderText   = "$src_text$"
)

// Message is one role-tagged entry of a prompt template.
type Message struct {
	Role    string
	Content string

	// opaque is set when the caller's content was missing or not a JSON
	// string. raw then holds it verbatim and substitution leaves it alone.
	opaque bool
	raw    json.RawMessage
}

// UnmarshalJSON accepts any content value; only string content is rendered.
func (m *Message) UnmarshalJSON(data []byte) error {
	var aux struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*m = Message{Role: aux.Role}
	if len(aux.Content) > 0 && aux.Content[0] == '"' {
		return json.Unmarshal(aux.Content, &m.Content)
	}
	m.opaque = true
	m.raw = aux.Content
	return nil
}

// MarshalJSON writes the message back in the provider's wire shape.
func (m Message) MarshalJSON() ([]byte, error) {
	switch {
	case !m.opaque:
		return encodeJSON(struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{m.Role, m.Content})
	case len(m.raw) == 0:
		return encodeJSON(struct {
			Role string `json:"role"`
		}{m.Role})
	default:
		return encodeJSON(struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		}{m.Role, m.raw})
	}
}

// HasText reports whether the message carries string content.
func (m Message) HasText() bool {
	return !m.opaque
}

// PromptTemplate is an ordered conversation with placeholders.
type PromptTemplate []Message

// DefaultTemplate is used when the caller supplies no prompts. It is shared
// across calls and must never be modified in place.
var DefaultTemplate = PromptTemplate{
	{Role: openai.ChatMessageRoleUser, Content: "You are a professional translation engine, skilled in translating text into accurate, professional, fluent, and natural translations, avoiding mechanical literal translations like machine translation. You only translate the text without interpreting it. You only respond with the translated text and do not include any additional content."},
	{Role: openai.ChatMessageRoleAssistant, Content: "OK, I will only translate the text content you provided, never interpret it."},
	{Role: openai.ChatMessageRoleUser, Content: "Translate the text delimited by ``` below to Simplified Chinese(简体中文), only return translation:\n```\nHello, world!\n```\n"},
	{Role: openai.ChatMessageRoleAssistant, Content: "你好，世界！"},
	{Role: openai.ChatMessageRoleUser, Content: "Translate the text delimited by ``` below to English, only return translation:\n```\n再见，小明\n```\n"},
	{Role: openai.ChatMessageRoleAssistant, Content: "Bye, Xiaoming."},
	{Role: openai.ChatMessageRoleUser, Content: "Translate the text delimited by ``` below to $to$, only return translation:\n```\n$src_text$\n```\n"},
}

// ParseTemplate decodes a JSON array of {"role", "content"} objects.
func ParseTemplate(s string) (PromptTemplate, error) {
	var t PromptTemplate
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil, &ValidationError{
			Param: ParamPrompts,
			Cause: fmt.Errorf("%w: %v", ErrMalformedTemplate, err),
		}
	}
	if t == nil {
		return nil, &ValidationError{
			Param: ParamPrompts,
			Cause: fmt.Errorf("%w: expected a JSON array", ErrMalformedTemplate),
		}
	}
	return t, nil
}

// Substitute returns a copy of the template with every $to$ replaced by to
// and every $src_text$ replaced by text. Replacement is a single literal pass,
// so placeholders occurring inside to or text are not expanded again.
func (t PromptTemplate) Substitute(to, text string) PromptTemplate {
	r := strings.NewReplacer(PlaceholderTarget, to, PlaceholderText, text)

	out := make(PromptTemplate, len(t))
	for i, m := range t {
		if m.HasText() {
			m.Content = r.Replace(m.Content)
		}
		out[i] = m
	}
	return out
}

// encodeJSON marshals v without HTML escaping and without a trailing newline.
func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
