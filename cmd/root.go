package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/killallgit/scribe/pkg/config"
	"github.com/killallgit/scribe/pkg/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Locale-aware prompt template renderer",
	Long: `Scribe compiles and renders parameterized, locale-aware prompt
templates written in Markdown with embedded directives.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(cfgFile); err != nil {
			return err
		}
		cfg := config.Get()
		return logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.Persist)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./scribe.yaml)")
	rootCmd.PersistentFlags().String("templates", "", "template directory (overrides config)")
	rootCmd.PersistentFlags().String("locale", "", "locale to render with (overrides config)")
}

// templatesDir resolves the template directory from flag or config.
func templatesDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("templates"); dir != "" {
		return dir
	}
	return config.Get().Templates.Directory
}

// activeLocale resolves the render locale from flag or config.
func activeLocale(cmd *cobra.Command) string {
	if loc, _ := cmd.Flags().GetString("locale"); loc != "" {
		return loc
	}
	return config.Get().Locales.Default
}
