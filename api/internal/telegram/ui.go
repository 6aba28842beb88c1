package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"compify/api/internal/chat"
	"compify/api/internal/mathtext"
	"compify/api/internal/practice"
	"compify/api/internal/solver/types"
)

const maxMessageLen = 4000

// One "Practice n" button per similar problem, three to a row.
func practiceKeyboard(card *chat.SolutionCard) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i := range card.Solution.SimilarProblems {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Practice %d", i+1), practiceData(card.ID(), i)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func closeKeyboard() tgbotapi.InlineKeyboardMarkup {
	btn := tgbotapi.NewInlineKeyboardButtonData("Close practice", cbClose)
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btn))
}

func plain(s string) string { return mathtext.Render(s, mathtext.Plain{}) }

func formatSolution(sol types.Solution) string {
	var b strings.Builder
	if s := strings.TrimSpace(sol.OriginalProblemOCR); s != "" {
		b.WriteString("📷 Problem\n")
		b.WriteString(plain(s))
		b.WriteString("\n\n")
	}
	b.WriteString("📝 Solution\n")
	b.WriteString(plain(sol.StepByStepSolution))
	b.WriteString("\n\n✅ Answer: ")
	b.WriteString(plain(sol.FinalAnswer))
	if len(sol.SimilarProblems) > 0 {
		b.WriteString("\n\n📚 Similar problems")
		for i, p := range sol.SimilarProblems {
			fmt.Fprintf(&b, "\n%d. %s (%s, %s)\n   %s", i+1, p.Title, p.Source, p.Difficulty, plain(p.SimilarityLogic))
		}
	}
	return b.String()
}

func formatPractice(s practice.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧪 Practice: %s\n%s · %s\n\n", s.Problem.Title, s.Problem.Source, s.Problem.Difficulty)
	b.WriteString(plain(s.Problem.ProblemText))
	if h := s.Hint(); h != "" {
		b.WriteString("\n\n💡 ")
		b.WriteString(plain(h))
	}
	b.WriteString("\n\nSend your solution as a message.")
	return b.String()
}

func formatOutcome(s practice.Snapshot) string {
	var b strings.Builder
	if s.Outcome.IsCorrect {
		b.WriteString("✅ Correct Solution!\n\n")
	} else {
		b.WriteString("❌ Not Quite Right\n\n")
	}
	b.WriteString(plain(s.Outcome.Feedback))
	if s.ShowCorrectSolution() {
		b.WriteString("\n\nFull Solution\n")
		b.WriteString(plain(s.Outcome.CorrectSolution))
	}
	return b.String()
}

// chunk splits s into pieces of at most max runes, preferring line breaks.
func chunk(s string, max int) []string {
	r := []rune(s)
	if len(r) <= max {
		return []string{s}
	}
	var out []string
	for len(r) > max {
		cut := max
		for i := max; i > max/2; i-- {
			if r[i-1] == '\n' {
				cut = i
				break
			}
		}
		out = append(out, string(r[:cut]))
		r = r[cut:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}
