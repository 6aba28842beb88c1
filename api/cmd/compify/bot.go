package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"compify/api/internal/chat"
	"compify/api/internal/handle"
	"compify/api/internal/httpserver"
	"compify/api/internal/practice"
	"compify/api/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot for the owner chat",
	Long: `Runs the Telegram frontend. With WEBHOOK_URL set the bot registers a webhook
and serves it next to the HTTP API; otherwise it long-polls.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

func runBot(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return err
	}
	r := &telegram.Router{
		Bot:      bot,
		OwnerID:  cfg.OwnerChatID,
		Chat:     chat.New(a.gw, chat.WithLogger(logger), chat.WithTimeout(cfg.RequestTimeout)),
		Practice: practice.New(a.gw, practice.WithLogger(logger), practice.WithTimeout(cfg.RequestTimeout)),
		Creds:    a.creds,
		Log:      logger.Named("telegram"),
	}
	defer r.Wait()

	mux := chi.NewRouter()
	mux.Mount("/", handle.New(a.gw, a.creds, a.db, cfg.RequestTimeout, logger).Routes())

	if base := strings.TrimSpace(cfg.WebhookURL); base != "" {
		path := telegram.WebhookPath(cfg.TelegramBotToken)
		wh, err := tgbotapi.NewWebhook(strings.TrimRight(base, "/") + path)
		if err != nil {
			return err
		}
		wh.DropPendingUpdates = true
		if _, err := bot.Request(wh); err != nil {
			return err
		}
		mux.Handle(path, r.WebhookHandler(ctx))
		logger.Info("webhook mode")
		return httpserver.Run(ctx, httpserver.New(":"+cfg.Port, mux), logger)
	}

	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logger.Warn("delete webhook failed", zap.Error(err))
	}
	srvDone := make(chan struct{})
	go func() {
		defer close(srvDone)
		if err := httpserver.Run(ctx, httpserver.New(":"+cfg.Port, mux), logger); err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()
	logger.Info("polling mode", zap.String("bot", bot.Self.UserName))
	r.RunPolling(ctx, bot)
	<-srvDone
	return nil
}
