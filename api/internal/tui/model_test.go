package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"compify/api/internal/chat"
	"compify/api/internal/practice"
	"compify/api/internal/solver/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubSolver struct{}

func (stubSolver) RequestSolution(_ context.Context, req types.SolveRequest) (types.Solution, error) {
	return types.Solution{
		OriginalProblemOCR: req.ProblemText,
		StepByStepSolution: `Add: $2+2=4$`,
		FinalAnswer:        "4",
		SimilarProblems: []types.PracticeProblem{
			{Title: "Sum", Source: "Drill", ProblemText: "What is $3+3$?", SimilarityLogic: "single-digit addition", Difficulty: "Easy"},
		},
	}, nil
}

type stubVerifier struct{}

func (stubVerifier) RequestVerification(context.Context, types.VerifyRequest) (types.VerificationOutcome, error) {
	return types.VerificationOutcome{IsCorrect: false, Feedback: "Off by one.", CorrectSolution: "$3+3=6$"}, nil
}

type memCreds struct {
	mu  sync.Mutex
	key string
}

func (c *memCreds) Set(_ context.Context, k string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = k
	return nil
}

func (c *memCreds) APIKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

func newTestModel() (Model, *chat.Session, *practice.Session, *memCreds) {
	cs := chat.New(stubSolver{})
	ps := practice.New(stubVerifier{})
	creds := &memCreds{}
	return New(context.Background(), cs, ps, creds, nil), cs, ps, creds
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeAndEnter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.textarea.SetValue(text)
	return update(t, m, key(tea.KeyEnter))
}

func TestModel_SolveAndPractice(t *testing.T) {
	m, cs, ps, _ := newTestModel()
	assert.Contains(t, m.transcript(), chat.WelcomeText)

	m, cmd := typeAndEnter(t, m, "2+2")
	require.NotNil(t, cmd)
	assert.Empty(t, m.textarea.Value())
	require.Eventually(t, func() bool { return cs.State() == chat.Idle }, time.Second, 5*time.Millisecond)
	m, _ = update(t, m, solvedMsg{})

	out := m.transcript()
	assert.Contains(t, out, "**You:** 2+2")
	assert.Contains(t, out, "Add: `2+2=4`")
	assert.Contains(t, out, "**Final answer:** 4")
	assert.Contains(t, out, "1. **Sum** (Drill, Easy)")

	m, _ = typeAndEnter(t, m, "/practice 1")
	assert.Equal(t, practice.Selected, ps.State())
	assert.Contains(t, m.transcript(), "Hint: Focus on single-digit addition")

	m, cmd = typeAndEnter(t, m, "3+3=7")
	require.NotNil(t, cmd)
	assert.True(t, m.verifying)
	require.Eventually(t, func() bool { return ps.State() == practice.Verified }, time.Second, 5*time.Millisecond)
	m, _ = update(t, m, verifiedMsg{})

	assert.False(t, m.verifying)
	out = m.transcript()
	assert.Contains(t, out, "Not Quite Right")
	assert.Contains(t, out, "#### Full Solution\n\n`3+3=6`")
	assert.NotContains(t, out, "Hint:")
	assert.Len(t, cs.Messages(), 2)

	m, _ = update(t, m, key(tea.KeyEsc))
	assert.Equal(t, practice.NoneSelected, ps.State())
	assert.Equal(t, "Practice closed.", m.status)
}

type failingVerifier struct{}

func (failingVerifier) RequestVerification(context.Context, types.VerifyRequest) (types.VerificationOutcome, error) {
	return types.VerificationOutcome{}, types.ErrEmptyResponse
}

func TestModel_TypingUpdatesPracticeDraft(t *testing.T) {
	cs := chat.New(stubSolver{})
	ps := practice.New(failingVerifier{})
	m := New(context.Background(), cs, ps, &memCreds{}, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2+2")})
	assert.Empty(t, ps.Snapshot().Candidate, "no draft without a selected problem")

	m, _ = typeAndEnter(t, m, "2+2")
	require.Eventually(t, func() bool { return cs.State() == chat.Idle }, time.Second, 5*time.Millisecond)
	m, _ = update(t, m, solvedMsg{})
	m, _ = typeAndEnter(t, m, "/practice 1")
	require.Equal(t, practice.Selected, ps.State())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x=6")})
	assert.Equal(t, "x=6", ps.Snapshot().Candidate)

	m, _ = update(t, m, key(tea.KeyEnter))
	assert.Empty(t, m.textarea.Value())
	require.Eventually(t, func() bool { return ps.State() == practice.Selected }, time.Second, 5*time.Millisecond)
	m, _ = update(t, m, verifiedMsg{res: practice.Result{Err: types.ErrEmptyResponse}})
	assert.Equal(t, "x=6", m.textarea.Value(), "draft restored after a failed verification")
	assert.Contains(t, m.status, "Could not verify")
}

func TestModel_EmptyEnter(t *testing.T) {
	m, cs, _, _ := newTestModel()
	m, cmd := typeAndEnter(t, m, "   ")
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "Nothing to send")
	assert.Empty(t, cs.Messages())
}

func TestModel_PracticeWithoutSolution(t *testing.T) {
	m, _, ps, _ := newTestModel()
	m, _ = typeAndEnter(t, m, "/practice 1")
	assert.Equal(t, "No solution to practice from yet.", m.status)
	assert.Equal(t, practice.NoneSelected, ps.State())

	m, _ = typeAndEnter(t, m, "/practice x")
	assert.Equal(t, "Usage: /practice <n>", m.status)
}

func TestModel_Image(t *testing.T) {
	m, cs, _, _ := newTestModel()
	path := filepath.Join(t.TempDir(), "p.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))

	m, cmd := typeAndEnter(t, m, "/image "+path)
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.True(t, strings.HasPrefix(cs.Input().Image, "data:image/png;base64,"))
	assert.Contains(t, m.statusLine(), "[image attached]")

	m, _ = typeAndEnter(t, m, "/noimage")
	assert.Empty(t, cs.Input().Image)

	m, cmd = typeAndEnter(t, m, "/image "+filepath.Join(t.TempDir(), "missing.png"))
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.status, "Could not read image")
}

func TestModel_Key(t *testing.T) {
	m, _, _, creds := newTestModel()
	m, _ = typeAndEnter(t, m, "/key")
	assert.Equal(t, "API key: (not set)", m.status)

	m, cmd := typeAndEnter(t, m, "/key secret-9876")
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "secret-9876", creds.APIKey())
	assert.Contains(t, m.status, "9876")
	assert.NotContains(t, m.status, "secret")
}

func TestModel_Quit(t *testing.T) {
	m, _, _, _ := newTestModel()
	_, cmd := update(t, m, key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)

	_, cmd = typeAndEnter(t, m, "/quit")
	require.NotNil(t, cmd)
	_, ok = cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModel_UnknownCommand(t *testing.T) {
	m, _, _, _ := newTestModel()
	m, _ = typeAndEnter(t, m, "/frobnicate")
	assert.Contains(t, m.status, "Unknown command /frobnicate")
}

func TestModel_Resize(t *testing.T) {
	m, _, _, _ := newTestModel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, m.viewport.Width)
	assert.Equal(t, 40-headerHeight-statusHeight-inputHeight, m.viewport.Height)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 0, Height: 0})
	assert.Equal(t, 20, m.width)
	assert.NotEmpty(t, m.View())
}
