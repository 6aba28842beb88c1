// Package gemini adapts Google's Gemini models to solver.Capability.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"compify/api/internal/solver"
	"compify/api/internal/solver/types"
)

const jsonMIME = "application/json"

// Engine talks to the Gemini API through google.golang.org/genai.
// A client is created per call because the API key may change at runtime.
type Engine struct {
	model   string
	baseURL string
	log     *zap.Logger
}

func New(model string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{model: strings.TrimSpace(model), log: log}
}

// WithBaseURL points the engine at a different API host.
func (e *Engine) WithBaseURL(u string) *Engine {
	e.baseURL = u
	return e
}

func (e *Engine) Name() string  { return "gemini" }
func (e *Engine) Model() string { return e.model }

func (e *Engine) Generate(ctx context.Context, call solver.Call) (string, error) {
	cfg := &genai.ClientConfig{APIKey: call.APIKey, Backend: genai.BackendGeminiAPI}
	if e.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: e.baseURL}
	}
	cl, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini %s: new client: %w", call.Op, err)
	}

	budget := call.ThinkingBudget
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIME,
		ResponseSchema:   toGenaiSchema(call.Schema),
		ThinkingConfig:   &genai.ThinkingConfig{ThinkingBudget: &budget},
	}
	contents := []*genai.Content{genai.NewContentFromParts(toGenaiParts(call.Parts), genai.RoleUser)}

	resp, err := cl.Models.GenerateContent(ctx, e.model, contents, gc)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", call.Op, err)
	}
	if resp == nil {
		return "", nil
	}
	e.logUsage(call.Op, resp.UsageMetadata)
	return resp.Text(), nil
}

func (e *Engine) logUsage(op solver.Op, u *genai.GenerateContentResponseUsageMetadata) {
	if u == nil {
		return
	}
	e.log.Debug("gemini usage",
		zap.String("op", string(op)),
		zap.Int32("prompt_tokens", u.PromptTokenCount),
		zap.Int32("thought_tokens", u.ThoughtsTokenCount),
		zap.Int32("total_tokens", u.TotalTokenCount),
	)
}

func toGenaiParts(in []solver.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(in))
	for _, p := range in {
		if p.IsBlob() {
			out = append(out, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}

func toGenaiSchema(s *types.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toGenaiSchema(v)
		}
	}
	return out
}

func genaiType(t types.SchemaType) genai.Type {
	switch t {
	case types.SchemaObject:
		return genai.TypeObject
	case types.SchemaArray:
		return genai.TypeArray
	case types.SchemaBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
