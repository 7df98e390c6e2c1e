package agentmodel

// ThinkingLevel selects how much extended-reasoning budget a request
// asks the model to spend. Ordering is meaningful: levels compare with
// plain integer comparison via their underlying rank.
type ThinkingLevel int

const (
	ThinkingOff ThinkingLevel = iota
	ThinkingMinimal
	ThinkingLow
	ThinkingMedium
	ThinkingHigh
	ThinkingXHigh
)

func (l ThinkingLevel) String() string {
	switch l {
	case ThinkingOff:
		return "off"
	case ThinkingMinimal:
		return "minimal"
	case ThinkingLow:
		return "low"
	case ThinkingMedium:
		return "medium"
	case ThinkingHigh:
		return "high"
	case ThinkingXHigh:
		return "xhigh"
	default:
		return "unknown"
	}
}

// ThinkingBudgetTokens is the hard-coded default budget table from
// spec §4.2, used by the Anthropic adapter when no per-level override
// is configured on the LLMModel.
var ThinkingBudgetTokens = map[ThinkingLevel]int{
	ThinkingMinimal: 1024,
	ThinkingLow:     2048,
	ThinkingMedium:  4096,
	ThinkingHigh:    8192,
	ThinkingXHigh:   32768,
}

// ReasoningEffort maps a ThinkingLevel onto the OpenAI-style
// low/medium/high effort vocabulary per spec §4.2's mapping table.
func (l ThinkingLevel) ReasoningEffort() string {
	switch l {
	case ThinkingMinimal, ThinkingLow:
		return "low"
	case ThinkingMedium:
		return "medium"
	case ThinkingHigh, ThinkingXHigh:
		return "high"
	default:
		return ""
	}
}

// ModelCost is the 4-way per-million-token cost split.
type ModelCost struct {
	InputPerMillion      float64 `json:"inputPerMillion"`
	OutputPerMillion     float64 `json:"outputPerMillion"`
	CacheReadPerMillion  float64 `json:"cacheReadPerMillion"`
	CacheWritePerMillion float64 `json:"cacheWritePerMillion"`
}

// EstimateCost applies the cost split to a Usage snapshot, producing a
// dollar figure; this is what an adapter stamps onto Usage.Cost when
// the provider does not report cost directly.
func (c ModelCost) EstimateCost(u Usage) float64 {
	const million = 1_000_000.0
	return float64(u.Input)*c.InputPerMillion/million +
		float64(u.Output)*c.OutputPerMillion/million +
		float64(u.CacheRead)*c.CacheReadPerMillion/million +
		float64(u.CacheWrite)*c.CacheWritePerMillion/million
}

// LLMModel describes one addressable model: which wire API it speaks,
// which vendor backend serves it, and its capability/cost envelope.
// Stable identity is ID.
type LLMModel struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	API           string            `json:"api"`      // wire API / provider-registry key, e.g. "openai-responses"
	Provider      string            `json:"provider"` // vendor, used for api-key lookup (§6.2); one vendor may expose several APIs
	BaseURL       string            `json:"baseUrl,omitempty"`
	Reasoning     bool              `json:"reasoning"`
	Modalities    []string          `json:"modalities"` // e.g. "text", "image"
	Cost          ModelCost         `json:"cost"`
	ContextWindow int               `json:"contextWindow"`
	MaxTokens     int               `json:"maxTokens"`
	Headers       map[string]string `json:"headers,omitempty"`

	// ThinkingBudgets overrides ThinkingBudgetTokens per-level for this
	// model, when the vendor ships a different default table.
	ThinkingBudgets map[ThinkingLevel]int `json:"thinkingBudgets,omitempty"`
}

// BudgetFor resolves the thinking-token budget for a level, preferring
// a model-specific override and falling back to the hard-coded table.
func (m LLMModel) BudgetFor(level ThinkingLevel) int {
	if m.ThinkingBudgets != nil {
		if b, ok := m.ThinkingBudgets[level]; ok {
			return b
		}
	}
	return ThinkingBudgetTokens[level]
}

// SupportsModality reports whether the model declares a modality.
func (m LLMModel) SupportsModality(modality string) bool {
	for _, mm := range m.Modalities {
		if mm == modality {
			return true
		}
	}
	return false
}
