package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/surveyarr/config"
	"github.com/s0up4200/surveyarr/filter"
	"github.com/s0up4200/surveyarr/qualtrics"
)

// dotenvFile is consulted for QUALTRICS_API_TOKEN when the config has none
const dotenvFile = ".env"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  zerolog.Logger
	client  *qualtrics.Client
	filters *filter.Manager

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "surveyarr",
	Short: "Manage Qualtrics surveys, mailing lists and response exports",
	Long: `surveyarr is a CLI for the Qualtrics v3 API. It lists and manages surveys,
mailing lists, contacts and users, creates distribution links and exports
survey responses to CSV files.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// SetVersion sets the version reported by --version
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initializeApp loads the configuration, resolves the API token and
// creates the client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger = setupLogger(cfg.Logging)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter); err != nil {
		return fmt.Errorf("invalid filter in config: %w", err)
	}

	token, err := config.Resolve(cmd.Context(),
		config.FromConfig(cfg),
		config.FromDotenv(dotenvFile),
		config.StdioPrompt(),
	)
	if err != nil {
		return err
	}

	client, err = qualtrics.New(cfg.Qualtrics(token), qualtrics.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create Qualtrics client: %w", err)
	}

	logger.Debug().Str("base_url", client.BaseURL()).Msg("Client ready")
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	fd := os.Stderr.Fd()
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// partialOK logs a partial listing and reports whether its rows are still
// worth showing
func partialOK(err error) bool {
	var partial *qualtrics.PartialResultError
	if errors.As(err, &partial) {
		logger.Warn().Err(partial.Err).Int("fetched", partial.Fetched).Msg("Listing incomplete")
		return true
	}
	return false
}
