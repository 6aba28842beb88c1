package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"compify/api/internal/chat"
)

const (
	cbPractice = "p:"
	cbClose    = "practice_close"
)

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack

	switch {
	case cb.Data == cbClose:
		r.Practice.Close()
		r.send(r.OwnerID, "Practice closed.")
	case strings.HasPrefix(cb.Data, cbPractice):
		cardID, idx, err := parsePracticeData(cb.Data)
		if err != nil {
			r.send(r.OwnerID, "This button is no longer valid.")
			return
		}
		r.selectProblem(cardID, idx)
	}
}

func (r *Router) selectProblem(cardID string, idx int) {
	var card *chat.SolutionCard
	for _, m := range r.Chat.Messages() {
		if c, ok := m.(*chat.SolutionCard); ok && c.ID() == cardID {
			card = c
			break
		}
	}
	if card == nil || idx < 0 || idx >= len(card.Solution.SimilarProblems) {
		r.send(r.OwnerID, "That problem is no longer available.")
		return
	}
	r.Practice.SelectProblem(card.Solution.SimilarProblems[idx])
	r.sendWithKeyboard(r.OwnerID, formatPractice(r.Practice.Snapshot()), closeKeyboard())
}

func practiceData(cardID string, idx int) string {
	return fmt.Sprintf("%s%s:%d", cbPractice, cardID, idx)
}

func parsePracticeData(data string) (string, int, error) {
	rest := strings.TrimPrefix(data, cbPractice)
	i := strings.LastIndexByte(rest, ':')
	if i <= 0 {
		return "", 0, fmt.Errorf("bad practice callback %q", data)
	}
	n, err := strconv.Atoi(rest[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("bad practice callback %q: %w", data, err)
	}
	return rest[:i], n, nil
}
