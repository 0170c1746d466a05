package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/frederic-klein/e3spec/internal/config"
)

// app carries state shared by all commands of one invocation.
type app struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *log.Logger

	// lookupEnv reads the process environment; replaced in tests.
	lookupEnv func(string) (string, bool)
}

func newRootCmd() *cobra.Command {
	a := &app{lookupEnv: os.LookupEnv}

	rootCmd := &cobra.Command{
		Use:   "e3spec",
		Short: "Manage e3 build specifications",
		Long: `e3spec builds module trees from a specification, compares specifications,
and regenerates a specification from an installed e3 environment.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/e3spec/e3spec.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newBuildCmd(a))
	rootCmd.AddCommand(newCompareCmd(a))
	rootCmd.AddCommand(newGenerateCmd(a))
	rootCmd.AddCommand(newProtectCmd(a))

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return classify(err)
	}
	a.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
	return nil
}
