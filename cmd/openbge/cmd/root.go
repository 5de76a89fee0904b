package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openbge-client/internal/config"
	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/internal/service"
	"github.com/openbge-client/pkg/external"
)

// app carries the state shared by every subcommand
type app struct {
	cfgFile string
	v       *viper.Viper
	logger  *logrus.Logger
	service domain.PlatformService
}

// NewRootCommand builds the openbge command tree
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "openbge",
		Short: "OpenBGE platform client",
		Long: `openbge calls the OpenBGE platform with signed requests and prints
the normalized results as JSON.

Connection settings come from config.yaml, OPENBGE_* environment variables
or the flags below, in increasing order of precedence.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./config.yaml, ./config/config.yaml, /etc/openbge/config.yaml)")
	flags.String("host", "", "platform host, e.g. openapi.example.com")
	flags.String("key", "", "application key")
	flags.String("secret", "", "application secret")
	flags.Duration("timeout", 0, "request timeout (default 30s)")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"platform.host":    "host",
		"platform.key":     "key",
		"platform.secret":  "secret",
		"platform.timeout": "timeout",
		"logging.level":    "log-level",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		a.samplesCommand(),
		a.validateCommand(),
		a.variantsCommand(),
		a.surveyCommand(),
		a.smsCommand(),
		a.searchCommand(),
		a.probeCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	opts := []config.Option{config.WithViper(a.v)}
	if a.cfgFile != "" {
		opts = append(opts, config.WithConfigFile(a.cfgFile))
	}

	manager, err := config.NewManager(opts...)
	if err != nil {
		return err
	}
	cfg := manager.GetConfig()
	if err := config.ValidatePlatform(cfg.Platform); err != nil {
		return err
	}

	a.logger = config.NewLogger(cfg.Logging)
	a.logger.SetOutput(cmd.ErrOrStderr())

	client, err := external.NewClient(cfg.Platform, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create platform client: %w", err)
	}
	a.service = service.NewPlatformService(client, a.logger)
	return nil
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitCode is 2 for bad input, 3 for platform failures and 1 otherwise
func exitCode(err error) int {
	switch {
	case domain.IsValidationError(err):
		return 2
	default:
		if _, ok := domain.AsServiceError(err); ok {
			return 3
		}
		return 1
	}
}
