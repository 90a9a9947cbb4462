// Package cli provides the command-line interface for signchat.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/raphaelgruber/signchat/internal/client"
	"github.com/raphaelgruber/signchat/internal/config"
	"github.com/raphaelgruber/signchat/internal/metrics"
	"github.com/raphaelgruber/signchat/internal/session"
	"github.com/raphaelgruber/signchat/internal/widget"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose     bool
	serverURL   string
	sessionFlag string
	emailFlag   string

	// Global config and backend client
	cfg       config.Config
	apiClient *client.Client
	collector *metrics.Collector
	logger    *slog.Logger
	closeLog  func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "signchat",
	Short: "Chat with the sign shop assistant and request quotes",
	Long: `Signchat talks to the sign shop chat backend from the terminal.

Chat with the design assistant, share your email, attach logo files and
fill in a quote request for a custom sign. Running signchat without a
command starts an interactive chat.`,
	Version:           Version,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
	RunE:              runChat,
}

// setup loads configuration, wires logging and creates the backend client.
func setup(cmd *cobra.Command, args []string) error {
	// Skip setup for version and help commands
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	cfg = config.Load()
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if verbose && cfg.LogLevel > slog.LevelDebug {
		cfg.LogLevel = slog.LevelDebug
	}
	if sessionFlag != "" && !session.ID(sessionFlag).Valid() {
		return fmt.Errorf("invalid session id %q", sessionFlag)
	}

	var console io.Writer
	if verbose {
		console = cmd.ErrOrStderr()
	}
	logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel, console)
	slog.SetDefault(logger)

	collector = metrics.NewCollector()
	apiClient = client.New(cfg.ServerURL,
		client.WithTimeout(cfg.ClientTimeout),
		client.WithLogger(logger),
		client.WithMetrics(collector),
	)
	logger.Debug("signchat started", "server", cfg.ServerURL, "command", cmd.Name())
	return nil
}

// teardown prints request statistics in verbose mode and closes the log file.
func teardown(cmd *cobra.Command, args []string) {
	if verbose && collector != nil {
		printMetrics(cmd.ErrOrStderr(), collector.Snapshot())
	}
	if closeLog != nil {
		if err := closeLog(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close log file: %v\n", err)
		}
		closeLog = nil
	}
}

// newApp creates the session state for a command, honoring --session and
// --email.
func newApp(opts ...widget.Option) *widget.App {
	base := []widget.Option{
		widget.WithLogger(logger),
		widget.WithEmailFirst(cfg.EmailFirst),
		widget.WithKeywordFallback(cfg.EmailKeywordFallback),
		widget.WithQuoteFormDelay(cfg.QuoteFormDelay),
	}
	if sessionFlag != "" {
		base = append(base, widget.WithSession(session.ID(sessionFlag)))
	}
	if emailFlag != "" {
		base = append(base, widget.WithEmail(emailFlag))
	}
	return widget.New(apiClient, append(base, opts...)...)
}

// requireSession returns the --session value for commands that act on an
// existing conversation.
func requireSession() (session.ID, error) {
	if sessionFlag == "" {
		return "", fmt.Errorf("--session is required")
	}
	return session.ID(sessionFlag), nil
}

func printMetrics(w io.Writer, snap metrics.Snapshot) {
	if len(snap.Endpoints) == 0 {
		return
	}
	fmt.Fprintf(w, "\nRequests (%.1fs):\n", snap.UptimeSeconds)
	for _, e := range snap.Endpoints {
		fmt.Fprintf(w, "  %-17s %3d calls  %3d failed  avg %6.0fms  max %5dms\n",
			e.Endpoint, e.Count, e.Failures, e.AvgTimeMs, e.MaxTimeMs)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs and request stats on stderr)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend URL (default $SIGNCHAT_SERVER_URL or http://localhost:5000)")
	rootCmd.PersistentFlags().StringVarP(&sessionFlag, "session", "s", "", "continue an existing session")
	rootCmd.PersistentFlags().StringVarP(&emailFlag, "email", "e", "", "email address already given to the assistant")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(emailCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(logosCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(phoneCmd)
	rootCmd.AddCommand(versionCmd)
}
