package ernie

// MaxOutputTokens is the completion budget sent with every request.
const MaxOutputTokens = 2048

// Payload is the chat completion body posted to the provider.
type Payload struct {
	Messages        PromptTemplate `json:"messages"`
	Stream          bool           `json:"stream"`
	Temperature     float64        `json:"temperature"`
	TopP            float64        `json:"top_p"`
	PenaltyScore    float64        `json:"penalty_score"`
	System          string         `json:"system"`
	MaxOutputTokens int            `json:"max_output_tokens"`
}

// Encode returns the JSON body. Identical payloads encode to identical bytes.
func (p *Payload) Encode() ([]byte, error) {
	return encodeJSON(p)
}

// Request is a validated, rendered translation request ready for dispatch.
type Request struct {
	Params  *Parameters
	Payload *Payload
}

// Build validates the parameter bag and renders the payload for translating
// text into to. It performs no I/O.
func Build(text, to string, bag map[string]string) (*Request, error) {
	params, err := ParseParameters(bag)
	if err != nil {
		return nil, err
	}

	tmpl, err := params.Template()
	if err != nil {
		return nil, err
	}

	return &Request{
		Params: params,
		Payload: &Payload{
			Messages:        tmpl.Substitute(to, text),
			Stream:          false,
			Temperature:     params.Temperature,
			TopP:            params.TopP,
			PenaltyScore:    params.PenaltyScore,
			System:          params.SystemPrompt,
			MaxOutputTokens: MaxOutputTokens,
		},
	}, nil
}
