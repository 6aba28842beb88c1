// Package tui is the terminal frontend: one chat session plus the practice
// sub-session, rendered with glamour inside a bubbletea program.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"compify/api/internal/chat"
	"compify/api/internal/credential"
	"compify/api/internal/practice"
	"compify/api/internal/util"
)

const (
	headerHeight = 1
	statusHeight = 1
	inputHeight  = 5
)

type Credentials interface {
	Set(ctx context.Context, key string) error
	APIKey() string
}

// messages delivered back into Update by commands
type (
	solvedMsg   struct{}
	verifiedMsg struct{ res practice.Result }
	imageMsg    struct {
		path    string
		dataURL string
		err     error
	}
	statusMsg string
)

type Model struct {
	ctx      context.Context
	chat     *chat.Session
	practice *practice.Session
	creds    Credentials
	log      *zap.Logger

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	styles   styles

	width, height int
	verifying     bool
	status        string
}

// New builds the model. ctx bounds the solver and verifier calls it starts.
func New(ctx context.Context, cs *chat.Session, ps *practice.Session, creds Credentials, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	ta := textarea.New()
	ta.Placeholder = "Type a problem, or /help"
	ta.ShowLineNumbers = false
	ta.SetWidth(76)
	ta.SetHeight(inputHeight - 2)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		chat:     cs,
		practice: ps,
		creds:    creds,
		log:      log,
		textarea: ta,
		viewport: viewport.New(80, 16),
		spinner:  sp,
		styles:   defaultStyles(),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if m.practice.State() != practice.NoneSelected {
				m.practice.Close()
				m.verifying = false
				m.status = "Practice closed."
				m.refresh()
			}
			return m, nil
		case tea.KeyEnter:
			return m.enter()
		}

	case solvedMsg:
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case verifiedMsg:
		m.verifying = false
		switch {
		case errors.Is(msg.res.Err, practice.ErrStale):
		case msg.res.Err != nil:
			m.status = "Could not verify: " + chat.NoticeFor(msg.res.Err)
			if m.textarea.Value() == "" {
				m.textarea.SetValue(m.practice.Snapshot().Candidate)
			}
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case imageMsg:
		if msg.err != nil {
			m.status = "Could not read image: " + msg.err.Error()
			return m, nil
		}
		m.chat.SetImage(msg.dataURL)
		m.status = "Attached " + msg.path
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var taCmd, vpCmd tea.Cmd
	before := m.textarea.Value()
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	if draft := m.textarea.Value(); draft != before {
		switch m.practice.State() {
		case practice.Selected, practice.Verified:
			m.practice.SetCandidate(draft)
		}
	}
	return m, tea.Batch(taCmd, vpCmd)
}

func (m *Model) resize(w, h int) {
	if w < 20 {
		w = 20
	}
	m.width, m.height = w, h
	vh := h - headerHeight - statusHeight - inputHeight
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = w
	m.viewport.Height = vh
	m.textarea.SetWidth(w - 4)

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(w-4),
	)
	if err != nil {
		m.log.Warn("markdown renderer unavailable", zap.Error(err))
	} else {
		m.renderer = r
	}
	m.refresh()
}

// enter handles a submitted line: a slash command, a practice answer, or a problem.
func (m Model) enter() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.textarea.Value())
	if strings.HasPrefix(text, "/") {
		m.textarea.Reset()
		return m.command(text)
	}

	if m.practice.State() != practice.NoneSelected {
		if text == "" {
			return m, nil
		}
		ch, err := m.practice.SubmitCandidate(m.ctx, text)
		if err != nil {
			m.status = practiceRefusal(err)
			return m, nil
		}
		m.textarea.Reset()
		m.verifying = true
		m.status = ""
		m.refresh()
		return m, tea.Batch(m.spinner.Tick, waitVerified(ch))
	}

	m.chat.SetText(text)
	done, ok := m.chat.Submit(m.ctx)
	if !ok {
		if m.chat.Busy() {
			m.status = "Still solving the previous problem."
		} else {
			m.status = "Nothing to send: type a problem or /image <path>."
		}
		return m, nil
	}
	m.textarea.Reset()
	m.status = ""
	m.refresh()
	m.viewport.GotoBottom()
	return m, tea.Batch(m.spinner.Tick, waitSolved(done))
}

func (m Model) command(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	switch fields[0] {
	case "/image":
		if arg == "" {
			m.status = "Usage: /image <path>"
			return m, nil
		}
		return m, loadImage(arg)
	case "/noimage":
		m.chat.ClearImage()
		m.status = "Image removed."
	case "/practice":
		n, err := strconv.Atoi(arg)
		if err != nil {
			m.status = "Usage: /practice <n>"
			return m, nil
		}
		m.selectProblem(n)
	case "/close":
		m.practice.Close()
		m.verifying = false
		m.status = "Practice closed."
	case "/key":
		if arg == "" {
			m.status = "API key: " + credential.Mask(m.creds.APIKey())
			return m, nil
		}
		return m, m.saveKey(arg)
	case "/help":
		m.status = helpLine
	case "/quit":
		return m, tea.Quit
	default:
		m.status = "Unknown command " + fields[0] + ". " + helpLine
	}
	m.refresh()
	return m, nil
}

const helpLine = "/image <path> · /noimage · /practice <n> · /close · /key [value] · /quit"

func (m *Model) selectProblem(n int) {
	card, ok := m.chat.LatestSolution()
	if !ok {
		m.status = "No solution to practice from yet."
		return
	}
	probs := card.Solution.SimilarProblems
	if n < 1 || n > len(probs) {
		m.status = fmt.Sprintf("Pick a problem between 1 and %d.", len(probs))
		return
	}
	m.practice.SelectProblem(probs[n-1])
	m.verifying = false
	m.status = "Practice mode: type your solution, Esc to leave."
}

func (m Model) saveKey(key string) tea.Cmd {
	ctx, creds := m.ctx, m.creds
	return func() tea.Msg {
		if err := creds.Set(ctx, key); err != nil {
			return statusMsg("Could not save the key: " + err.Error())
		}
		return statusMsg("API key saved (" + credential.Mask(key) + ").")
	}
}

func practiceRefusal(err error) string {
	switch {
	case errors.Is(err, practice.ErrBusy):
		return "Still checking your previous answer."
	case errors.Is(err, practice.ErrEmptyCandidate):
		return "Type a solution first."
	default:
		return "Select a practice problem first."
	}
}

func waitSolved(done <-chan chat.Message) tea.Cmd {
	return func() tea.Msg {
		<-done
		return solvedMsg{}
	}
}

func waitVerified(ch <-chan practice.Result) tea.Cmd {
	return func() tea.Msg {
		return verifiedMsg{res: <-ch}
	}
}

func loadImage(path string) tea.Cmd {
	return func() tea.Msg {
		b, err := os.ReadFile(path)
		if err != nil {
			return imageMsg{path: path, err: err}
		}
		return imageMsg{path: path, dataURL: util.ImageDataURL(b)}
	}
}

// refresh re-renders the transcript into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(m.render(m.transcript()))
}

func (m Model) render(md string) string {
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
