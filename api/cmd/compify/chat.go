package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"compify/api/internal/chat"
	"compify/api/internal/practice"
	"compify/api/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal chat",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cs := chat.New(a.gw, chat.WithLogger(logger), chat.WithTimeout(cfg.RequestTimeout))
	ps := practice.New(a.gw, practice.WithLogger(logger), practice.WithTimeout(cfg.RequestTimeout))

	m := tui.New(ctx, cs, ps, a.creds, logger.Named("tui"))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
