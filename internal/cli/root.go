package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doruk/focusdo/internal/config"
	"github.com/doruk/focusdo/internal/logger"
	"github.com/doruk/focusdo/internal/storage"
	"github.com/doruk/focusdo/internal/tui"
)

var (
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

var rootCmd = &cobra.Command{
	Use:   "focusdo",
	Short: "focusdo - tasks and pomodoro focus timer in the terminal",
	Long: `focusdo combines task management with a pomodoro focus timer and
daily progress statistics, all persisted locally.

Run 'focusdo' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync(log)

		st, err := storage.New(cfg.DBPath, log)
		if err != nil {
			log.Error("open storage", zap.Error(err))
			return fmt.Errorf("open storage: %w", err)
		}
		defer st.Close()

		app, err := tui.NewApp(st, log)
		if err != nil {
			return err
		}
		p := tea.NewProgram(app, tea.WithAltScreen())

		log.Info("launching TUI", zap.String("db", cfg.DBPath))
		if _, err := p.Run(); err != nil {
			log.Error("TUI error", zap.Error(err))
			return fmt.Errorf("run TUI: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads the yaml config, applies flag overrides, and builds the
// logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}

	log, err := logger.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func openStore() (*storage.Store, *zap.Logger, error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, nil, err
	}
	st, err := storage.New(cfg.DBPath, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return st, log, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the database file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Path to log file")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
}
