package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/casterly-dev/casterly/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CASTERLY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:     "casterly",
		Short:   "Personal bank account ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "project directory")
	flags.String("config", "", "config file (default <dir>/casterly.yaml)")
	flags.String("db", "", "database file, overrides the config")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("env-file", "", ".env file to load (default ./.env if present)")
	for _, name := range []string{"dir", "config", "db", "log-level", "env-file"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	env := &environment{v: v}
	rootCmd.AddCommand(
		newInitCommand(env),
		newAccountCommand(env),
		newMovementCommand(env),
		newCategoryCommand(env),
		newRuleCommand(env),
		newSuggestCommand(env),
		newCategorizeCommand(env),
		newImportCommand(env),
		newReportCommand(env),
	)

	return rootCmd
}
