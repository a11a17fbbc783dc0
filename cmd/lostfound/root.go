package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/config"
)

// commandContext loads the configuration once and applies flag overrides.
type commandContext struct {
	configFlag string
	dbFlag     string
	addrFlag   string
	logFlag    string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if c.dbFlag != "" {
			cfg.Database.Path = c.dbFlag
		}
		if c.addrFlag != "" {
			cfg.Server.Addr = c.addrFlag
		}
		if c.logFlag != "" {
			cfg.Logging.Path = c.logFlag
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "lostfound",
		Short:         "Lost and found matching service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVarP(&ctx.dbFlag, "db", "d", "", "SQLite database path (overrides config)")
	flags.StringVarP(&ctx.addrFlag, "addr", "a", "", "Listen address (overrides config)")
	flags.StringVarP(&ctx.logFlag, "log", "l", "", "Log file path (overrides config)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newEvaluateCommand(ctx))
	rootCmd.AddCommand(newMatchesCommand(ctx))
	rootCmd.AddCommand(newCompareCommand(ctx))

	return rootCmd
}
