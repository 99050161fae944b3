package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"gym-membership/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.AIServiceAdapter using the Chat Completions API
// with a json_schema response format. Any OpenAI-compatible gateway works via baseURL.
type OpenAIAdapter struct {
	provider string
	model    string
	maxOut   int
	client   openai.Client
}

func NewOpenAIAdapter(apiKey, model string, maxOut int) (*OpenAIAdapter, error) {
	return newOpenAICompatible(ProviderOpenAI, apiKey, "", model, maxOut)
}

func newOpenAICompatible(provider, apiKey, baseURL, model string, maxOut int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New(provider + ": empty api key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	return &OpenAIAdapter{
		provider: provider,
		model:    model,
		maxOut:   maxOut,
		client:   openai.NewClient(opts...),
	}, nil
}

func (o *OpenAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{o.model}, nil
}

// contextWindows lists input windows by model prefix, longest prefix first.
var contextWindows = []struct {
	prefix string
	tokens int
}{
	{"gpt-4.1", 1_047_576},
	{"gpt-4o", 128_000},
	{"gpt-4-turbo", 128_000},
	{"gpt-4", 8_192},
	{"gpt-3.5-turbo", 16_385},
	{"o1", 200_000},
	{"o3", 200_000},
	{"o4", 200_000},
}

func contextWindow(model string) int {
	l := strings.ToLower(model)
	for _, w := range contextWindows {
		if strings.HasPrefix(l, w.prefix) {
			return w.tokens
		}
	}
	return 0
}

// GetModelInfo reports a known input window for OpenAI model families; other
// models (e.g. behind a compatible gateway) report 0.
func (o *OpenAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	name := modelOrDefault(model, o.model)
	return adapter.ModelInfo{
		Name:        name,
		Description: o.provider + " chat completions model",
		MaxTokens:   contextWindow(name),
		Supports:    []string{"text", "json_schema"},
	}, nil
}

// CountTokens is a local tiktoken estimate; unknown models use cl100k_base.
func (o *OpenAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	enc, err := tiktoken.EncodingForModel(modelOrDefault(model, o.model))
	if err != nil {
		if enc, err = tiktoken.GetEncoding("cl100k_base"); err != nil {
			return 0, err
		}
	}
	n := 0
	for _, m := range messages {
		// role + content + per-message framing
		n += len(enc.Encode(m.Role, nil, nil)) + len(enc.Encode(m.Content, nil, nil)) + 4
	}
	return n + 2, nil
}

func (o *OpenAIAdapter) GenerateJSON(ctx context.Context, req adapter.StructuredRequest) (string, adapter.Usage, error) {
	model := modelOrDefault(req.Model, o.model)
	u := adapter.Usage{Provider: o.provider, Model: model}
	if len(req.Messages) == 0 {
		return "", u, errors.New(o.provider + ": no messages")
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch strings.ToLower(m.Role) {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	}
	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        name,
					Description: openai.String(req.Schema.Description),
					Schema:      toJSONSchema(req.Schema),
				},
			},
		}
	}
	maxOut := req.MaxOutputTokens
	if maxOut <= 0 {
		maxOut = o.maxOut
	}
	if maxOut > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxOut))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", u, err
	}
	u.PromptTokens = int(resp.Usage.PromptTokens)
	u.CompletionTokens = int(resp.Usage.CompletionTokens)
	u.TotalTokens = int(resp.Usage.TotalTokens)

	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, u, nil
		}
	}
	return "", u, errors.New(o.provider + ": no choice content")
}

// toJSONSchema renders the neutral schema as a JSON Schema document.
func toJSONSchema(s *adapter.Schema) map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for k, v := range s.Properties {
			props[k] = toJSONSchema(v)
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = toJSONSchema(s.Items)
	}
	return out
}
