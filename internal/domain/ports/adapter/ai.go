package adapter

import "context"

// Message represents one prompt message.
type Message struct {
	Role    string `json:"role"` // "user", "system"
	Content string `json:"content"`
}

// ModelInfo describes a model.
type ModelInfo struct {
	Name        string
	Description string
	MaxTokens   int
	Supports    []string
}

// Usage for a single call, as reported by the provider that served it.
type Usage struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Schema types, named after JSON Schema.
const (
	TypeObject = "object"
	TypeArray  = "array"
	TypeString = "string"
)

// Schema is a provider-neutral subset of JSON Schema. Adapters translate it to
// their native response-format types.
type Schema struct {
	Type        string
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	// Ordering keeps generated objects stable where a provider supports it.
	Ordering []string
}

// StructuredRequest asks a model for a single JSON document matching Schema.
type StructuredRequest struct {
	Model           string
	System          string
	Messages        []Message
	SchemaName      string
	Schema          *Schema
	MaxOutputTokens int
}

// AIServiceAdapter is the port for language model providers.
type AIServiceAdapter interface {
	ListModels(ctx context.Context) ([]string, error)
	GetModelInfo(model string) (ModelInfo, error)

	// CountTokens returns prompt tokens for the provided messages
	// (best-effort when the provider gives no exact count).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)

	// GenerateJSON returns the raw JSON text produced under the schema constraint.
	// It makes exactly one provider call.
	GenerateJSON(ctx context.Context, req StructuredRequest) (string, Usage, error)
}
