package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amgmSolution = `{"stepByStepSolution":"Apply AM-GM: $a+b\\ge2\\sqrt{ab}$","finalAnswer":"$x=4$","similarProblems":[{"title":"T","source":"AMC","problemText":"P","similarityLogic":"AM-GM","difficulty":"Medium"}]}`

func TestDecodeSolution_RoundTrip(t *testing.T) {
	sol, err := DecodeSolution(amgmSolution)
	require.NoError(t, err)

	assert.Equal(t, `Apply AM-GM: $a+b\ge2\sqrt{ab}$`, sol.StepByStepSolution)
	assert.Equal(t, "$x=4$", sol.FinalAnswer)
	assert.Empty(t, sol.OriginalProblemOCR)
	require.Len(t, sol.SimilarProblems, 1)
	assert.Equal(t, PracticeProblem{
		Title:           "T",
		Source:          "AMC",
		ProblemText:     "P",
		SimilarityLogic: "AM-GM",
		Difficulty:      "Medium",
	}, sol.SimilarProblems[0])

	back, err := json.Marshal(sol)
	require.NoError(t, err)
	assert.JSONEq(t, amgmSolution, string(back))
}

func TestDecodeSolution_KeepsOCR(t *testing.T) {
	sol, err := DecodeSolution(`{"originalProblemOCR":"Find $x$","stepByStepSolution":"s","finalAnswer":"a","similarProblems":[]}`)
	require.NoError(t, err)
	assert.Equal(t, "Find $x$", sol.OriginalProblemOCR)
}

func TestDecodeSolution_AnyProblemCount(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5} {
		t.Run(fmt.Sprintf("%d problems", n), func(t *testing.T) {
			probs := make([]PracticeProblem, n)
			for i := range probs {
				probs[i] = PracticeProblem{Title: "t", Source: "s", ProblemText: "p", SimilarityLogic: "l", Difficulty: "d"}
			}
			payload, err := json.Marshal(Solution{StepByStepSolution: "s", FinalAnswer: "a", SimilarProblems: probs})
			require.NoError(t, err)

			sol, err := DecodeSolution(string(payload))
			require.NoError(t, err)
			assert.Len(t, sol.SimilarProblems, n)
		})
	}
}

func TestDecodeSolution_StripsCodeFences(t *testing.T) {
	sol, err := DecodeSolution("```json\n" + amgmSolution + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "$x=4$", sol.FinalAnswer)
}

func TestDecodeSolution_Malformed(t *testing.T) {
	cases := map[string]string{
		"only final answer":      `{"finalAnswer":"4"}`,
		"empty final answer":     `{"stepByStepSolution":"s","finalAnswer":"","similarProblems":[]}`,
		"blank proof":            `{"stepByStepSolution":"   ","finalAnswer":"4","similarProblems":[]}`,
		"missing problems":       `{"stepByStepSolution":"s","finalAnswer":"4"}`,
		"null problems":          `{"stepByStepSolution":"s","finalAnswer":"4","similarProblems":null}`,
		"problem without source": `{"stepByStepSolution":"s","finalAnswer":"4","similarProblems":[{"title":"T","problemText":"P","similarityLogic":"L","difficulty":"D"}]}`,
		"problem empty title":    `{"stepByStepSolution":"s","finalAnswer":"4","similarProblems":[{"title":"","source":"S","problemText":"P","similarityLogic":"L","difficulty":"D"}]}`,
		"not json":               `The answer is 4.`,
		"wrong type":             `{"stepByStepSolution":1,"finalAnswer":"4","similarProblems":[]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSolution(payload)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse), "got %v", err)
			assert.Equal(t, KindMalformedResponse, KindOf(err))
		})
	}
}

func TestDecodeVerification(t *testing.T) {
	out, err := DecodeVerification(`{"isCorrect":false,"feedback":"Check your arithmetic","correctSolution":"x=4"}`)
	require.NoError(t, err)
	assert.False(t, out.IsCorrect)
	assert.Equal(t, "Check your arithmetic", out.Feedback)
	assert.Equal(t, "x=4", out.CorrectSolution)
}

func TestDecodeVerification_Malformed(t *testing.T) {
	cases := map[string]string{
		"missing verdict":  `{"feedback":"f","correctSolution":"c"}`,
		"empty feedback":   `{"isCorrect":true,"feedback":"","correctSolution":"c"}`,
		"missing solution": `{"isCorrect":true,"feedback":"f"}`,
		"garbage":          `{`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeVerification(payload)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindAuthenticationMissing, KindOf(fmt.Errorf("solve: %w", ErrAuthenticationMissing)))
	assert.Equal(t, KindEmptyResponse, KindOf(ErrEmptyResponse))
	assert.Equal(t, KindCapability, KindOf(&CapabilityError{Engine: "gemini", Op: "solve", Err: errors.New("quota")}))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
}

func TestRequests(t *testing.T) {
	assert.False(t, SolveRequest{}.HasInput())
	assert.False(t, SolveRequest{ProblemText: "  "}.HasInput())
	assert.True(t, SolveRequest{Image: "data:image/png;base64,AAAA"}.HasInput())
	assert.True(t, SolveRequest{ProblemText: "1+1"}.HasInput())

	assert.False(t, VerifyRequest{ProblemText: "p"}.Valid())
	assert.True(t, VerifyRequest{ProblemText: "p", CandidateSolution: "c"}.Valid())
}

func TestSchemaByName(t *testing.T) {
	s, ok := SchemaByName("solution")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"stepByStepSolution", "finalAnswer", "similarProblems"}, s.Required)
	assert.NotContains(t, s.Required, "originalProblemOCR")

	_, ok = SchemaByName("detect")
	assert.False(t, ok)
}
