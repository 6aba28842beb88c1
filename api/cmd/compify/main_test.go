package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"compify/api/internal/solver/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolatedEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir()) // no stray .env
	t.Setenv("COMPIFY_DB_PATH", filepath.Join(t.TempDir(), "compify.db"))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("COMPIFY_ENGINE", "")
}

func TestKeyCommands(t *testing.T) {
	isolatedEnv(t)

	out, err := execute(t, "key", "show")
	require.NoError(t, err)
	assert.Equal(t, "(not set)\n", out)

	out, err = execute(t, "key", "set", "AIzaTest5678")
	require.NoError(t, err)
	assert.Equal(t, "saved ********5678\n", out)

	out, err = execute(t, "key", "show")
	require.NoError(t, err)
	assert.Equal(t, "********5678\n", out)

	_, err = execute(t, "key", "clear")
	require.NoError(t, err)
	out, err = execute(t, "key", "show")
	require.NoError(t, err)
	assert.Equal(t, "(not set)\n", out)
}

func TestSolveRejectsEmptyInput(t *testing.T) {
	isolatedEnv(t)
	_, err := execute(t, "solve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to solve")
}

func TestVerifyRequiresBothFlags(t *testing.T) {
	isolatedEnv(t)
	_, err := execute(t, "verify", "--problem", "1+1", "--candidate", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--candidate")
}

func TestUnknownEngine(t *testing.T) {
	isolatedEnv(t)
	t.Setenv("COMPIFY_ENGINE", "nope")
	_, err := execute(t, "key", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown engine "nope"`)
}

func TestWriteResult(t *testing.T) {
	sol := types.Solution{
		StepByStepSolution: `$x^2=4$ so $x=\pm 2$`,
		FinalAnswer:        `$\pm 2$`,
		SimilarProblems:    []types.PracticeProblem{{Title: "Roots", Source: "AMC 8", ProblemText: "Solve $x^2=9$", Difficulty: "Easy"}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "yaml", sol))
	var back types.Solution
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sol, back)
	assert.Contains(t, buf.String(), "finalAnswer:")

	buf.Reset()
	require.NoError(t, writeResult(&buf, "json", sol))
	assert.Contains(t, buf.String(), `"stepByStepSolution": "$x^2=4$ so $x=\\pm 2$"`)

	buf.Reset()
	require.NoError(t, writeResult(&buf, "text", sol))
	assert.Contains(t, buf.String(), "Answer: ± 2")
	assert.Contains(t, buf.String(), "1. Roots (AMC 8, Easy)")

	buf.Reset()
	require.NoError(t, writeResult(&buf, "text", types.VerificationOutcome{IsCorrect: true, Feedback: "ok", CorrectSolution: "hidden"}))
	assert.False(t, strings.Contains(buf.String(), "hidden"))

	assert.Error(t, writeResult(&buf, "xml", sol))
	assert.Error(t, checkFormat("xml"))
}
