package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	legacy "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"compify/api/internal/solver"
	"compify/api/internal/solver/types"
)

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(types.SolutionSchema)
	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, types.SolutionSchema.Required, s.Required)

	sp := s.Properties["similarProblems"]
	require.NotNil(t, sp)
	assert.Equal(t, genai.TypeArray, sp.Type)
	require.NotNil(t, sp.Items)
	assert.Equal(t, genai.TypeObject, sp.Items.Type)
	assert.Equal(t, genai.TypeString, sp.Items.Properties["difficulty"].Type)

	v := toGenaiSchema(types.VerificationSchema)
	assert.Equal(t, genai.TypeBoolean, v.Properties["isCorrect"].Type)
	assert.Nil(t, toGenaiSchema(nil))
}

func TestToLegacySchema(t *testing.T) {
	s := toLegacySchema(types.SolutionSchema)
	assert.Equal(t, legacy.TypeObject, s.Type)
	assert.Equal(t, legacy.TypeArray, s.Properties["similarProblems"].Type)
	assert.Equal(t, legacy.TypeString, s.Properties["finalAnswer"].Type)
	assert.Equal(t, legacy.TypeBoolean, toLegacySchema(types.VerificationSchema).Properties["isCorrect"].Type)
}

func TestParts(t *testing.T) {
	in := []solver.Part{solver.BlobPart([]byte{1, 2}, "image/png"), solver.TextPart("solve")}

	g := toGenaiParts(in)
	require.Len(t, g, 2)
	require.NotNil(t, g[0].InlineData)
	assert.Equal(t, "image/png", g[0].InlineData.MIMEType)
	assert.Equal(t, []byte{1, 2}, g[0].InlineData.Data)
	assert.Equal(t, "solve", g[1].Text)

	l := toLegacyParts(in)
	require.Len(t, l, 2)
	assert.Equal(t, legacy.Blob{MIMEType: "image/png", Data: []byte{1, 2}}, l[0])
	assert.Equal(t, legacy.Text("solve"), l[1])
}

func TestFirstText(t *testing.T) {
	assert.Empty(t, firstText(nil))
	assert.Empty(t, firstText(&legacy.GenerateContentResponse{}))

	resp := &legacy.GenerateContentResponse{Candidates: []*legacy.Candidate{
		{Content: nil},
		{Content: &legacy.Content{Parts: []legacy.Part{legacy.Text(`{"a":`), legacy.Text(`1}`)}}},
	}}
	assert.Equal(t, `{"a":1}`, firstText(resp))
}

func TestEngine_Generate(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent"), r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": `{"isCorrect":true,"feedback":"ok","correctSolution":"x=4"}`}},
				},
			}},
		})
	}))
	defer srv.Close()

	e := New("test-model", nil).WithBaseURL(srv.URL)
	assert.Equal(t, "gemini", e.Name())
	assert.Equal(t, "test-model", e.Model())

	out, err := e.Generate(context.Background(), solver.Call{
		Op:             solver.OpVerify,
		APIKey:         "secret",
		Parts:          []solver.Part{solver.TextPart("judge this")},
		Schema:         types.VerificationSchema,
		ThinkingBudget: 2048,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"isCorrect":true,"feedback":"ok","correctSolution":"x=4"}`, out)

	assert.Contains(t, body, "judge this")
	assert.Contains(t, body, `"responseMimeType":"application/json"`)
	assert.Contains(t, body, `"thinkingBudget":2048`)
}

func TestEngine_GenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New("m", nil).WithBaseURL(srv.URL).Generate(context.Background(), solver.Call{
		Op: solver.OpSolve, APIKey: "k", Parts: []solver.Part{solver.TextPart("x")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini solve")
}
