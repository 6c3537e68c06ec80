// Package cli implements the querra command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/veldtlabs/querra/internal/adapters/driven/config/file"
	"github.com/veldtlabs/querra/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "querra",
	Short: "RAG collection server over NATS",
	Long: `querra ingests documents, web pages and parsed codebases into
vector collections and answers similarity queries over NATS
request/reply.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.querra/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the config path from the flag or the default
// location and loads it.
func loadConfig() (*file.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return file.Load(path)
}
