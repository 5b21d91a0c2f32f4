// casesim runs the MediQA case session controller.
//
// Usage:
//
//	casesim serve [--port=8080] [--api-base-url=<url>]
//	casesim play [--stub] [--api-base-url=<url>]
//	casesim stub-backend [--addr=:5000] [--seed=<n>] [--latency=<d>]
package main

import (
	"fmt"
	"os"

	"mediqa/casesim/internal/config"
	"mediqa/casesim/internal/logging"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configFile string
}

// v holds the merged configuration once the root pre-run has completed
var v *viper.Viper

var rootCmd = &cobra.Command{
	Use:   "casesim",
	Short: "MediQA case simulation session controller",
	Long: "casesim drives MediQA case simulations: it fetches a case, walks the learner\n" +
		"through its questions one at a time, submits the answers and renders the review.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configFile, "config", "", "Config file (YAML)")
	f.String("api-base-url", "", "MediQA backend base URL")
	f.Duration("request-timeout", 0, "Timeout for every backend call")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(stubBackendCmd)
	rootCmd.Version = version
}

var flagKeys = map[string]string{
	"api-base-url":    "api_base_url",
	"request-timeout": "request_timeout",
	"log-level":       "log_level",
	"log-format":      "log_format",
	"port":            "http_port",
	"redis-uri":       "redis_uri",
	"mongo-uri":       "mongo_uri",
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	v, err = config.New(rootFlags.configFile)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	for flag, key := range flagKeys {
		if fl := cmd.Flags().Lookup(flag); fl != nil && fl.Changed {
			if err := v.BindPFlag(key, fl); err != nil {
				return errors.Wrapf(err, "bind flag %s", flag)
			}
		}
	}

	logging.Init(logging.ParseLevel(v.GetString("log_level")), v.GetString("log_format"), cmd.ErrOrStderr())
	return nil
}

func loadedConfig() (*config.Config, error) {
	return config.Load(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
