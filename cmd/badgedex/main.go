// Package main provides the CLI entrypoint for badgedex.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/badgedex/internal/catalog"
	"github.com/verte-zerg/badgedex/internal/config"
	"github.com/verte-zerg/badgedex/internal/github"
	"github.com/verte-zerg/badgedex/internal/guide"
	"github.com/verte-zerg/badgedex/internal/model"
	"github.com/verte-zerg/badgedex/internal/progress"
	"github.com/verte-zerg/badgedex/internal/store"
	"github.com/verte-zerg/badgedex/internal/tui"
)

const (
	defaultSort     = "name"
	defaultFilter   = "all"
	defaultBackend  = guide.BackendLocal
	defaultLogLevel = "info"
	defaultAddr     = "127.0.0.1:8787"
)

var version = "dev"

var (
	browseSort   string
	browseFilter string
	browseStatus string
	browseSearch string

	profileUser    string
	profileAPIURL  string
	profileTimeout time.Duration

	guideBackend string
	guideModel   string
	guideBaseURL string
	guideDelay   time.Duration

	logLevel string
	logFile  string

	serveAddr string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "badgedex",
		Short:         "Browse GitHub achievements and track your progress",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version,
		RunE:          runBrowserCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&browseSort, "sort", defaultSort, "sort key: name, status or rarity")
	flags.StringVar(&browseFilter, "filter", defaultFilter, "ownership filter: all, owned or unowned")
	flags.StringVar(&browseStatus, "status", "", "only show one status: active, retired, unreleased or highlight")
	flags.StringVar(&browseSearch, "search", "", "case-insensitive search over name and description")
	flags.StringVar(&profileUser, "user", "", "GitHub username (default: linked profile)")
	flags.StringVar(&profileAPIURL, "api-url", github.DefaultBaseURL, "GitHub REST API root")
	flags.DurationVar(&profileTimeout, "timeout", github.DefaultTimeout, "GitHub request timeout")
	flags.StringVar(&guideBackend, "guide", defaultBackend, "guide backend: local, openai or gemini")
	flags.StringVar(&guideModel, "model", "", "model for remote guide backends")
	flags.StringVar(&guideBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	flags.DurationVar(&guideDelay, "thinking-delay", guide.DefaultThinkingDelay, "delay before local guide replies")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error")
	flags.StringVar(&logFile, "log-file", "", "log file (default: XDG state dir)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newOwnCmd())
	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newUnlinkCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// app bundles what every command needs once flags and config are resolved.
type app struct {
	catalog   *catalog.Catalog
	evaluator *progress.Evaluator
	store     *store.Store
	logger    *zap.Logger
	browse    model.BrowseConfig
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
	// Best-effort flush.
	_ = a.logger.Sync()
}

func openApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, fileCfg)

	browse, err := parseBrowse()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(logLevel, logFile)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	for _, w := range cat.Warnings() {
		logger.Warn("catalog warning", zap.String("detail", w))
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	return &app{
		catalog:   cat,
		evaluator: progress.NewEvaluator(cat.Trackers()),
		store:     st,
		logger:    logger,
		browse:    browse,
	}, nil
}

func applyConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "sort", &browseSort, fileCfg.Browser.Sort)
	applyStringConfig(cmd, "filter", &browseFilter, fileCfg.Browser.Filter)
	applyStringConfig(cmd, "status", &browseStatus, fileCfg.Browser.Status)
	applyStringConfig(cmd, "user", &profileUser, fileCfg.Profile.Username)
	applyStringConfig(cmd, "api-url", &profileAPIURL, fileCfg.Profile.APIURL)
	applyDurationConfig(cmd, "timeout", &profileTimeout, fileCfg.Profile.Timeout)
	applyStringConfig(cmd, "guide", &guideBackend, fileCfg.Guide.Backend)
	applyStringConfig(cmd, "model", &guideModel, fileCfg.Guide.Model)
	applyStringConfig(cmd, "base-url", &guideBaseURL, fileCfg.Guide.BaseURL)
	applyDurationConfig(cmd, "thinking-delay", &guideDelay, fileCfg.Guide.ThinkingDelay)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
}

func parseBrowse() (model.BrowseConfig, error) {
	sortKey, err := model.ParseSortKey(browseSort)
	if err != nil {
		return model.BrowseConfig{}, fmt.Errorf("invalid --sort: %w", err)
	}
	filter, err := model.ParseOwnershipFilter(browseFilter)
	if err != nil {
		return model.BrowseConfig{}, fmt.Errorf("invalid --filter: %w", err)
	}
	cfg := model.BrowseConfig{Search: browseSearch, Sort: sortKey, Filter: filter}
	if strings.TrimSpace(browseStatus) != "" {
		status, err := model.ParseStatus(browseStatus)
		if err != nil {
			return model.BrowseConfig{}, fmt.Errorf("invalid --status: %w", err)
		}
		cfg.Status = &status
	}
	return cfg, nil
}

func newLogger(level, file string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if file == "" {
		file = config.DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = lvl
	loggerConfig.OutputPaths = []string{file}
	loggerConfig.ErrorOutputPaths = []string{file}
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func (a *app) githubClient() *github.Client {
	return github.NewClient(
		github.WithBaseURL(profileAPIURL),
		github.WithToken(os.Getenv("GITHUB_TOKEN")),
		github.WithTimeout(profileTimeout),
		github.WithLogger(a.logger.Named("github")),
	)
}

func (a *app) responder(ctx context.Context) (guide.Responder, error) {
	return guide.New(ctx, guide.Options{
		Backend:       guideBackend,
		Model:         guideModel,
		BaseURL:       guideBaseURL,
		ThinkingDelay: guideDelay,
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
	}, a.catalog.All(), a.logger.Named("guide"))
}

func (a *app) ownedSet(ctx context.Context) (progress.OwnedSet, error) {
	ids, err := a.store.LoadOwned(ctx)
	if err != nil {
		return progress.OwnedSet{}, fmt.Errorf("failed to load owned achievements: %w", err)
	}
	return progress.NewOwnedSet(ids...), nil
}

// linkedUser resolves the username: --user, then config, then the stored link.
func (a *app) linkedUser(ctx context.Context) string {
	if name := strings.TrimSpace(profileUser); name != "" {
		return name
	}
	name, err := a.store.LinkedProfile(ctx)
	if err != nil {
		a.logger.Warn("failed to read linked profile", zap.Error(err))
		return ""
	}
	return name
}

// fetchLinked fetches stats for the linked user. No linked user yields nil.
func (a *app) fetchLinked(ctx context.Context) (*model.UserStats, error) {
	name := a.linkedUser(ctx)
	if name == "" {
		return nil, nil
	}
	st, err := a.githubClient().FetchUserStats(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch @%s: %w", name, err)
	}
	return &st, nil
}

func runBrowserCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	owned, err := a.ownedSet(ctx)
	if err != nil {
		return err
	}
	responder, err := a.responder(ctx)
	if err != nil {
		return err
	}

	m := tui.NewModel(tui.Deps{
		Catalog:    a.catalog,
		Evaluator:  a.evaluator,
		Owned:      owned,
		Store:      a.store,
		Fetcher:    a.githubClient(),
		Guide:      responder,
		Browse:     a.browse,
		LinkedUser: a.linkedUser(ctx),
		Logger:     a.logger.Named("tui"),
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# badgedex configuration
# Uncomment a value to enable it. CLI flags override config values.
# API keys come from GITHUB_TOKEN, OPENAI_API_KEY and GEMINI_API_KEY.

[browser]
# sort = %q              # name, status or rarity
# filter = %q             # all, owned or unowned
# status = "active"        # active, retired, unreleased or highlight

[profile]
# username = "octocat"     # GitHub user to track
# api-url = %q
# timeout = %q

[guide]
# backend = %q           # local, openai or gemini
# model = "gpt-4o-mini"
# thinking-delay = %q
# base-url = "https://api.openai.com/v1"

[log]
# level = %q
# file = "/tmp/badgedex.log"

[serve]
# addr = %q
`,
		defaultSort,
		defaultFilter,
		github.DefaultBaseURL,
		github.DefaultTimeout.String(),
		defaultBackend,
		guide.DefaultThinkingDelay.String(),
		defaultLogLevel,
		defaultAddr,
	)
}

// terminalWidth returns the stdout width, or 80 when it is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
