package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"compify/api/internal/chat"
	"compify/api/internal/credential"
	"compify/api/internal/practice"
)

// BotAPI is the subset of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Credentials interface {
	Set(ctx context.Context, key string) error
	APIKey() string
}

// Router serves exactly one chat, the owner's, backed by one chat session and
// one practice sub-session.
type Router struct {
	Bot      BotAPI
	OwnerID  int64
	Chat     *chat.Session
	Practice *practice.Session
	Creds    Credentials
	Log      *zap.Logger

	// Download fetches a photo by file id; nil uses the Bot file URL.
	Download func(ctx context.Context, fileID string) ([]byte, error)

	batches sync.Map // key -> *photoBatch
	wg      sync.WaitGroup
}

func (r *Router) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// Wait blocks until every background delivery started by the router is done.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		if upd.CallbackQuery.Message == nil || upd.CallbackQuery.Message.Chat.ID != r.OwnerID {
			return
		}
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	msg := upd.Message
	if msg == nil {
		return
	}
	if msg.Chat.ID != r.OwnerID {
		r.log().Info("ignoring foreign chat", zap.Int64("chat_id", msg.Chat.ID))
		return
	}

	switch {
	case msg.IsCommand():
		r.HandleCommand(ctx, *msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(ctx, *msg)
	case strings.TrimSpace(msg.Text) != "":
		r.acceptText(ctx, msg.Text)
	}
}

func (r *Router) HandleCommand(ctx context.Context, msg tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, chat.WelcomeText+"\n\n"+helpText)
	case "health":
		r.send(cid, "✅ OK")
	case "key":
		r.setKey(ctx, msg)
	case "clearimage":
		r.Chat.ClearImage()
		r.send(cid, "Image removed.")
	case "send":
		r.submit(ctx)
	case "close":
		r.Practice.Close()
		r.send(cid, "Practice closed.")
	default:
		r.send(cid, "Unknown command.\n\n"+helpText)
	}
}

const helpText = `Commands:
/send - solve the pending photo
/clearimage - drop the pending photo
/key <api key> - set the Gemini API key
/close - leave practice mode
/health - check the bot`

func (r *Router) setKey(ctx context.Context, msg tgbotapi.Message) {
	cid := msg.Chat.ID
	key := strings.TrimSpace(msg.CommandArguments())
	// the key should not stay in the chat history
	_, _ = r.Bot.Request(tgbotapi.NewDeleteMessage(cid, msg.MessageID))
	if key == "" {
		r.send(cid, "Usage: /key <api key>. Current: "+credential.Mask(r.Creds.APIKey()))
		return
	}
	if err := r.Creds.Set(ctx, key); err != nil {
		r.log().Error("credential save failed", zap.Error(err))
		r.send(cid, "Could not save the key.")
		return
	}
	r.send(cid, "API key saved ("+credential.Mask(key)+").")
}

// acceptText routes plain text: a candidate while practising, otherwise a problem.
func (r *Router) acceptText(ctx context.Context, text string) {
	switch r.Practice.State() {
	case practice.Selected, practice.Verified, practice.Verifying:
		r.submitCandidate(ctx, text)
	default:
		r.Chat.SetText(text)
		r.submit(ctx)
	}
}

func (r *Router) send(chatID int64, text string) {
	for _, part := range chunk(text, maxMessageLen) {
		if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			r.log().Warn("telegram send failed", zap.Error(err))
		}
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	parts := chunk(text, maxMessageLen)
	for i, part := range parts {
		m := tgbotapi.NewMessage(chatID, part)
		if i == len(parts)-1 {
			m.ReplyMarkup = kb
		}
		if _, err := r.Bot.Send(m); err != nil {
			r.log().Warn("telegram send failed", zap.Error(err))
		}
	}
}

func decodeJSON(req *http.Request, v any) error {
	defer req.Body.Close()
	return json.NewDecoder(req.Body).Decode(v)
}
