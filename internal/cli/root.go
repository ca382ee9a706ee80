package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/codegrep/internal/config"
)

// Exit codes follow grep.
const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2
)

// errNoMatch ends a successful run that found nothing.
var errNoMatch = errors.New("no matches")

var (
	cfgFile string
	verbose bool

	// v holds the flag bindings; it is handed to the config loader so flags
	// take precedence over environment variables and the config file.
	v = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codegrep PATTERN [PATH...]",
	Short: "Grep source code with syntax-aware context",
	Long: `codegrep searches source files with a regular expression and prints every
match inside its syntactic context: the headers of enclosing classes and
functions, nested scopes that start on a matched line, and a little padding.

Directories are walked recursively honoring .gitignore and .ignore files.
Settings are read from .codegrep/config.yml and CODEGREP_* environment
variables; flags override both.

Examples:
  codegrep 'def load' src/
  codegrep -n -c -i 'timeout' .
  codegrep --padding 0 --header-max 3 'TODO' internal/`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGrep,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute()))
}

// exitCode maps a command error to the process exit status and reports it.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitMatch
	case errors.Is(err, errNoMatch):
		return exitNoMatch
	default:
		fmt.Fprintf(os.Stderr, "codegrep: %v\n", err)
		return exitError
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .codegrep/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output on stderr")

	registerGrepFlags(rootCmd)
}

// loadConfig loads configuration for the current directory with flag overrides.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	var opts []config.LoaderOption
	opts = append(opts, config.WithViper(v))
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}

	cfg, err := config.NewLoader(wd, opts...).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
