package ernie

import "strconv"

// Keys of the host parameter bag.
const (
	ParamAPIKey       = "api_key"
	ParamSecretKey    = "secret_key"
	ParamModel        = "model_string"
	ParamSystemPrompt = "system_prompt"
	ParamPrompts      = "prompts"
	ParamTemperature  = "temperature"
	ParamTopP         = "top_p"
	ParamPenaltyScore = "penalty_score"
	ParamRequestURL   = "request_url"
)

// Defaults applied when an optional parameter is absent.
const (
	DefaultSystemPrompt = "You are a professional translation engine."
	DefaultTemperature  = 0.6
	DefaultTopP         = 0.9
	DefaultPenaltyScore = 1.0
	DefaultRequestURL   = "https://aip.baidubce.com/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/"
)

// Parameters is the validated form of the host parameter bag.
type Parameters struct {
	APIKey       string
	SecretKey    string
	Model        string
	SystemPrompt string
	Prompts      string // Raw JSON template; empty means DefaultTemplate
	Temperature  float64
	TopP         float64
	PenaltyScore float64
	RequestURL   string
}

// numericParam describes one bounded float parameter.
type numericParam struct {
	name     string
	def      float64
	rangeStr string
	inRange  func(float64) bool
}

// temperature is open at zero while top_p is closed; the provider rejects a
// zero temperature but accepts a zero top_p.
var numericParams = []numericParam{
	{ParamTemperature, DefaultTemperature, "(0, 1.0]", func(v float64) bool { return 0 < v && v <= 1.0 }},
	{ParamTopP, DefaultTopP, "[0.0, 1.0]", func(v float64) bool { return 0 <= v && v <= 1.0 }},
	{ParamPenaltyScore, DefaultPenaltyScore, "[1.0, 2.0]", func(v float64) bool { return 1.0 <= v && v <= 2.0 }},
}

// ParseParameters extracts and validates the parameter bag. An empty value
// counts as absent. Required keys are checked first, then numeric values are
// parsed, then range-checked; the first failure is returned.
func ParseParameters(bag map[string]string) (*Parameters, error) {
	p := &Parameters{}

	for _, req := range []struct {
		key string
		dst *string
	}{
		{ParamAPIKey, &p.APIKey},
		{ParamSecretKey, &p.SecretKey},
		{ParamModel, &p.Model},
	} {
		v := bag[req.key]
		if v == "" {
			return nil, &ConfigError{Param: req.key}
		}
		*req.dst = v
	}

	p.SystemPrompt = lookup(bag, ParamSystemPrompt, DefaultSystemPrompt)
	p.Prompts = bag[ParamPrompts]
	p.RequestURL = lookup(bag, ParamRequestURL, DefaultRequestURL)

	values := make([]float64, len(numericParams))
	for i, np := range numericParams {
		raw, ok := bag[np.name]
		if !ok || raw == "" {
			values[i] = np.def
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ValidationError{Param: np.name, Value: raw, Cause: ErrNotANumber}
		}
		values[i] = v
	}

	for i, np := range numericParams {
		if !np.inRange(values[i]) {
			return nil, &ValidationError{
				Param: np.name,
				Value: strconv.FormatFloat(values[i], 'g', -1, 64),
				Range: np.rangeStr,
				Cause: ErrOutOfRange,
			}
		}
	}

	p.Temperature, p.TopP, p.PenaltyScore = values[0], values[1], values[2]
	return p, nil
}

// Template returns the prompt template to render: the caller's prompts when
// set, DefaultTemplate otherwise.
func (p *Parameters) Template() (PromptTemplate, error) {
	if p.Prompts == "" {
		return DefaultTemplate, nil
	}
	return ParseTemplate(p.Prompts)
}

func lookup(bag map[string]string, key, def string) string {
	if v := bag[key]; v != "" {
		return v
	}
	return def
}
