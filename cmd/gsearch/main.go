package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hession/gsearch/internal/cli"
	"github.com/hession/gsearch/internal/config"
	"github.com/hession/gsearch/internal/history"
	"github.com/hession/gsearch/internal/llm"
	"github.com/hession/gsearch/internal/logger"
	"github.com/hession/gsearch/internal/render"
	"github.com/hession/gsearch/internal/search"
	"github.com/hession/gsearch/internal/session"
	"github.com/hession/gsearch/internal/webui"
)

var (
	version = cli.Version
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:   "gsearch",
		Short: "gsearch - grounded web search powered by Gemini",
		Long: `gsearch answers questions with Gemini and Google Search grounding,
showing the answer together with the web sources it cites.

Focus modes tune persona and model:
  • general    - balanced, comprehensive answers
  • news       - recent events, dates and timelines
  • academic   - formal language, studies and papers
  • technical  - code, documentation and developer forums`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configDir != "" {
				config.SetConfigDir(configDir)
			}
		},
		RunE: runInteractive,
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ./config)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "interactive",
		Short: "Start the interactive search prompt",
		RunE:  runInteractive,
	})
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gsearch v%s\n", version)
		},
	})

	return rootCmd
}

// app holds the wired components shared by all commands
type app struct {
	cfg   *config.Config
	store history.Storage
	ctrl  *session.Controller
}

// setup loads configuration and wires logger, storage and controller
func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		LogDir:     config.LogDir(),
		Level:      logger.ParseLevel(cfg.Log.Level),
		MaxDays:    cfg.Log.MaxDays,
		ConsoleOut: cfg.Log.Console,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logConfigInfo(cfg)

	store, err := history.NewSQLiteStorage(cfg.History.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	guidelines := config.DefaultGuidelines
	if promptCfg, err := config.LoadPromptConfig(); err != nil {
		logger.Warn("Using default guidelines: %v", err)
	} else {
		guidelines = promptCfg.Guidelines
	}

	orchestrator := search.New(cfg.Model.APIKey,
		search.WithTemperature(cfg.Model.Temperature),
		search.WithGuidelines(guidelines),
		search.WithGeneratorFactory(search.GeminiFactory(llm.Options{
			BaseURL:    cfg.Model.BaseURL,
			Timeout:    cfg.Timeout(),
			MaxRetries: cfg.Model.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay(),
		})),
	)

	return &app{
		cfg:   cfg,
		store: store,
		ctrl:  session.NewController(orchestrator, history.LoadRecent(store)),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close history store: %v", err)
	}
	logger.Close()
}

// logConfigInfo logs the effective configuration with the key redacted
func logConfigInfo(cfg *config.Config) {
	apiKeyStatus := "not configured"
	if cfg.Model.APIKey != "" {
		if len(cfg.Model.APIKey) > 8 {
			apiKeyStatus = cfg.Model.APIKey[:4] + "****" + cfg.Model.APIKey[len(cfg.Model.APIKey)-4:]
		} else {
			apiKeyStatus = "****"
		}
	}

	baseURL := cfg.Model.BaseURL
	if baseURL == "" {
		baseURL = "(SDK default)"
	}

	logger.Info("Config: api_key=%s base_url=%s temperature=%.2f timeout=%ds max_retries=%d",
		apiKeyStatus, baseURL, cfg.Model.Temperature, cfg.Model.TimeoutSeconds, cfg.Model.MaxRetries)
	logger.Info("Config: history_db=%s server_addr=%s log_level=%s",
		cfg.History.DBPath, cfg.Server.Addr, cfg.Log.Level)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// userError turns a search failure into the message shown on the terminal
func userError(err error) error {
	if errors.Is(err, session.ErrEmptyQuery) || errors.Is(err, session.ErrBusy) {
		return err
	}
	return errors.New(search.UserMessage(err))
}

func newSearchCmd() *cobra.Command {
	var (
		focusFlag string
		copyFlag  bool
		rawFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the answer with its sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			focus, err := search.ParseFocus(focusFlag)
			if err != nil {
				return err
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			renderer, err := render.NewTerminalRenderer(render.DefaultWidth, rawFlag)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			result, err := a.ctrl.SubmitWithFocus(ctx, strings.Join(args, " "), focus)
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderer.Result(result))

			if copyFlag {
				if render.NewCopier(&render.SystemClipboard{}).Copy(result.Answer) {
					fmt.Fprintln(cmd.ErrOrStderr(), renderer.Hint("Copied"))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&focusFlag, "focus", "f", "general", "focus mode: general, news, academic or technical")
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "copy the answer to the clipboard")
	cmd.Flags().BoolVar(&rawFlag, "raw", false, "print the answer without Markdown styling")
	return cmd
}

func runInteractive(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	renderer, err := render.NewTerminalRenderer(render.DefaultWidth, false)
	if err != nil {
		return err
	}

	if !a.cfg.IsAPIKeyConfigured() {
		path, _ := config.ConfigPath()
		fmt.Fprintln(cmd.OutOrStdout(), renderer.Error("API Key is not configured."))
		fmt.Fprintln(cmd.OutOrStdout(), renderer.Hint("Set GEMINI_API_KEY or model.api_key in "+path))
	}

	ctx, cancel := signalContext()
	defer cancel()

	shell := cli.NewShell(ctx, a.ctrl, renderer, render.NewCopier(&render.SystemClipboard{}), cmd.OutOrStdout())
	shell.Run()
	return nil
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			server := webui.NewServer(a.ctrl, addr)

			ctx, cancel := signalContext()
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("Shutting down web UI")
				return server.Stop()
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			printHistory(cmd.OutOrStdout(), a.ctrl.Recent())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctrl.ClearHistory(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	})

	return cmd
}

func printHistory(w io.Writer, recent []string) {
	if len(recent) == 0 {
		fmt.Fprintln(w, "No recent searches")
		return
	}
	for i, q := range recent {
		fmt.Fprintf(w, "%d. %s\n", i+1, q)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.String())

			path, _ := config.ConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "\nConfig file path: %s\n", path)
			return nil
		},
	}
}
