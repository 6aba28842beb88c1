package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"compify/api/internal/chat"
	"compify/api/internal/mathtext"
	"compify/api/internal/practice"
)

type styles struct {
	header lipgloss.Style
	status lipgloss.Style
	busy   lipgloss.Style
	input  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		busy:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
	}
}

func (m Model) View() string {
	title := "Compify"
	if s := m.practice.State(); s != practice.NoneSelected {
		title += " · practice (" + s.String() + ")"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.header.Render(title),
		m.viewport.View(),
		m.statusLine(),
		m.styles.input.Render(m.textarea.View()),
	)
}

func (m Model) statusLine() string {
	switch {
	case m.chat.Busy():
		return m.styles.busy.Render(m.spinner.View() + " Solving…")
	case m.verifying:
		return m.styles.busy.Render(m.spinner.View() + " Checking your solution…")
	}
	s := m.status
	if m.chat.Input().Image != "" {
		s = strings.TrimSpace("[image attached] " + s)
	}
	return m.styles.status.Render(s)
}

func md(s string) string { return mathtext.Render(s, mathtext.Markdown{}) }

// transcript is the whole conversation as markdown, followed by the practice panel.
func (m Model) transcript() string {
	msgs := m.chat.Messages()
	var b strings.Builder
	if len(msgs) == 0 {
		b.WriteString(chat.WelcomeText + "\n")
	}
	for _, msg := range msgs {
		switch v := msg.(type) {
		case *chat.UserMessage:
			b.WriteString("**You:** ")
			b.WriteString(md(v.Text))
			if v.HasImage() {
				b.WriteString(" _(image)_")
			}
			b.WriteString("\n\n")
		case *chat.SolutionCard:
			writeSolution(&b, v)
		case *chat.Notice:
			b.WriteString("> ⚠ " + v.Text + "\n\n")
		}
	}
	if snap := m.practice.Snapshot(); snap.State != practice.NoneSelected {
		writePractice(&b, snap)
	}
	return b.String()
}

func writeSolution(b *strings.Builder, c *chat.SolutionCard) {
	sol := c.Solution
	if s := strings.TrimSpace(sol.OriginalProblemOCR); s != "" {
		b.WriteString("### Problem\n\n" + md(s) + "\n\n")
	}
	b.WriteString("### Solution\n\n" + md(sol.StepByStepSolution) + "\n\n")
	b.WriteString("**Final answer:** " + md(sol.FinalAnswer) + "\n\n")
	if len(sol.SimilarProblems) == 0 {
		return
	}
	b.WriteString("### Practice\n\n")
	for i, p := range sol.SimilarProblems {
		fmt.Fprintf(b, "%d. **%s** (%s, %s): %s\n", i+1, p.Title, p.Source, p.Difficulty, md(p.SimilarityLogic))
	}
	b.WriteString("\n_Type /practice <n> to try one._\n\n")
}

func writePractice(b *strings.Builder, s practice.Snapshot) {
	fmt.Fprintf(b, "---\n\n## Practice: %s\n\n%s\n\n", s.Problem.Title, md(s.Problem.ProblemText))
	if h := s.Hint(); h != "" {
		b.WriteString("_" + md(h) + "_\n\n")
	}
	if s.State != practice.Verified {
		return
	}
	if s.Outcome.IsCorrect {
		b.WriteString("**✔ Correct Solution!**\n\n")
	} else {
		b.WriteString("**✘ Not Quite Right**\n\n")
	}
	b.WriteString(md(s.Outcome.Feedback) + "\n\n")
	if s.ShowCorrectSolution() {
		b.WriteString("#### Full Solution\n\n" + md(s.Outcome.CorrectSolution) + "\n\n")
	}
}
