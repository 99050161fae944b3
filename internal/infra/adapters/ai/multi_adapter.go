package ai

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gym-membership/internal/domain/ports/adapter"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMetis  = "metis"
	ProviderNoop   = "noop"
)

var _ adapter.AIServiceAdapter = (*MultiAIAdapter)(nil)

var errNoProvider = errors.New("ai: no provider configured")

// familyPrefixes routes well-known model families when config has no explicit entry.
var familyPrefixes = []struct {
	prefix   string
	provider string
}{
	{"gemini", ProviderGemini},
	{"gpt", ProviderOpenAI},
	{"o1", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
}

// MultiAIAdapter routes each call to one provider by model name:
// explicit config entry, then model family, then the default provider.
// A route to an unconfigured provider falls back to the default and then to
// the first configured provider by name.
type MultiAIAdapter struct {
	defaultProvider string
	providers       map[string]adapter.AIServiceAdapter
	order           []string
	routes          map[string]string
}

func NewMultiAIAdapter(defaultProvider string, providers map[string]adapter.AIServiceAdapter, routes map[string]string) *MultiAIAdapter {
	m := &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		providers:       make(map[string]adapter.AIServiceAdapter, len(providers)),
		routes:          make(map[string]string, len(routes)),
	}
	for name, a := range providers {
		if a == nil {
			continue
		}
		name = strings.ToLower(name)
		m.providers[name] = a
		m.order = append(m.order, name)
	}
	sort.Strings(m.order)
	for model, p := range routes {
		m.routes[model] = strings.ToLower(p)
	}
	return m
}

func (m *MultiAIAdapter) providerFor(model string) string {
	if p, ok := m.routes[model]; ok {
		return p
	}
	l := strings.ToLower(model)
	for _, f := range familyPrefixes {
		if strings.HasPrefix(l, f.prefix) {
			return f.provider
		}
	}
	return m.defaultProvider
}

func (m *MultiAIAdapter) route(model string) (adapter.AIServiceAdapter, error) {
	for _, name := range []string{m.providerFor(model), m.defaultProvider} {
		if a, ok := m.providers[name]; ok {
			return a, nil
		}
	}
	if len(m.order) > 0 {
		return m.providers[m.order[0]], nil
	}
	return nil, errNoProvider
}

// ListModels merges configured routes with what each provider reports, sorted.
// A provider that fails to list is skipped; the call fails only when all do.
func (m *MultiAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	if len(m.order) == 0 {
		return nil, errNoProvider
	}
	seen := make(map[string]struct{}, len(m.routes))
	for model := range m.routes {
		seen[model] = struct{}{}
	}
	var errs []error
	for _, name := range m.order {
		list, err := m.providers[name].ListModels(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, model := range list {
			if model != "" {
				seen[model] = struct{}{}
			}
		}
	}
	if len(errs) == len(m.order) {
		return nil, errors.Join(errs...)
	}
	out := make([]string, 0, len(seen))
	for model := range seen {
		out = append(out, model)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MultiAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	a, err := m.route(model)
	if err != nil {
		return adapter.ModelInfo{Name: model}, err
	}
	return a.GetModelInfo(model)
}

func (m *MultiAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	a, err := m.route(model)
	if err != nil {
		return 0, err
	}
	return a.CountTokens(ctx, model, messages)
}

func (m *MultiAIAdapter) GenerateJSON(ctx context.Context, req adapter.StructuredRequest) (string, adapter.Usage, error) {
	a, err := m.route(req.Model)
	if err != nil {
		return "", adapter.Usage{Model: req.Model}, err
	}
	return a.GenerateJSON(ctx, req)
}
