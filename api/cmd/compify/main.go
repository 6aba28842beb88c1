package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"compify/api/internal/config"
	"compify/api/internal/logging"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()

	envFile string
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "compify",
	Short: "Math problem solver backed by Gemini",
	Long: `compify solves math problems from text or photos, returns a step-by-step
solution with the final answer, and suggests similar problems to practice.

Run "compify chat" for the terminal chat, "compify bot" for Telegram or
"compify serve" for the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		c, err := config.Load(files...)
		if err != nil {
			return err
		}
		cfg = c

		var outputs []string
		if cmd == chatCmd {
			// the TUI owns the terminal
			path := logFile
			if path == "" {
				path = filepath.Join(filepath.Dir(cfg.DBPath), "compify.log")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return err
			}
			outputs = []string{path}
		}
		l, err := logging.New(cfg.LogLevel, cfg.LogDev, outputs...)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load instead of ./.env")
	chatCmd.Flags().StringVar(&logFile, "log-file", "", "log destination (default next to the database)")

	rootCmd.AddCommand(serveCmd, botCmd, chatCmd, solveCmd, verifyCmd, keyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
