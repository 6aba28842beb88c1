package gemini

import (
	"context"
	"fmt"
	"strings"

	legacy "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"compify/api/internal/solver"
	"compify/api/internal/solver/types"
)

// LegacyEngine uses github.com/google/generative-ai-go. That SDK has no
// thinking configuration, so the reasoning budget is not forwarded.
type LegacyEngine struct {
	model string
	log   *zap.Logger
}

func NewLegacy(model string, log *zap.Logger) *LegacyEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &LegacyEngine{model: strings.TrimSpace(model), log: log}
}

func (e *LegacyEngine) Name() string  { return "gemini-legacy" }
func (e *LegacyEngine) Model() string { return e.model }

func (e *LegacyEngine) Generate(ctx context.Context, call solver.Call) (string, error) {
	cl, err := legacy.NewClient(ctx, option.WithAPIKey(call.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini-legacy %s: new client: %w", call.Op, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.model)
	if m == nil {
		return "", fmt.Errorf("gemini-legacy: model is nil")
	}
	m.GenerationConfig = legacy.GenerationConfig{
		ResponseMIMEType: jsonMIME,
		ResponseSchema:   toLegacySchema(call.Schema),
	}
	if call.ThinkingBudget > 0 {
		e.log.Debug("reasoning budget not supported, ignoring",
			zap.String("op", string(call.Op)), zap.Int32("budget", call.ThinkingBudget))
	}

	resp, err := m.GenerateContent(ctx, toLegacyParts(call.Parts)...)
	if err != nil {
		return "", fmt.Errorf("gemini-legacy %s: %w", call.Op, err)
	}
	return firstText(resp), nil
}

func toLegacyParts(in []solver.Part) []legacy.Part {
	out := make([]legacy.Part, 0, len(in))
	for _, p := range in {
		if p.IsBlob() {
			out = append(out, legacy.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		out = append(out, legacy.Text(p.Text))
	}
	return out
}

// firstText concatenates the text parts of the first candidate that has content.
func firstText(resp *legacy.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(legacy.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func toLegacySchema(s *types.Schema) *legacy.Schema {
	if s == nil {
		return nil
	}
	out := &legacy.Schema{
		Type:        legacyType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toLegacySchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*legacy.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toLegacySchema(v)
		}
	}
	return out
}

func legacyType(t types.SchemaType) legacy.Type {
	switch t {
	case types.SchemaObject:
		return legacy.TypeObject
	case types.SchemaArray:
		return legacy.TypeArray
	case types.SchemaBoolean:
		return legacy.TypeBoolean
	default:
		return legacy.TypeString
	}
}
