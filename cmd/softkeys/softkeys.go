package softkeys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dasdy/softkeys/config"
	"github.com/dasdy/softkeys/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

var logCtx = logging.PackageCtx("cmd")

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "softkeys",
	Short: "Resolve touch traces on soft keyboard layouts",
	Long: `Softkeys turns pointer traces into key presses, text and modifier events using a
YAML keyboard layout. It can replay recorded traces, follow a live touch controller,
journal what was typed to sqlite and show the result as a heatmap.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		slog.SetDefault(logging.NewLogger(os.Stderr, verbose))

		return bindFlags(cmd)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	d := config.Defaults()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.softkeys.toml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "If provided, debug output will be shown")
	flags.String("layout-file", d.LayoutFile, "Path to the YAML layout document")
	flags.StringP("keyboard", "k", d.Keyboard, "Keyboard to start on; empty uses the document default")
	flags.Int("width", d.Width, "Keyboard width in pixels")
	flags.Int("height", d.Height, "Keyboard height in pixels; 0 uses the layout's own height")
	flags.Bool("landscape", d.Landscape, "Use landscape heights and split")
	flags.StringP("storage", "s", d.Storage, "Path to the sqlite journal")
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("toml")
		viper.SetConfigName(".softkeys")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			createExampleConfig()
		} else {
			slog.ErrorContext(logCtx, "Error reading config file", "error", err)
			os.Exit(1)
		}
	}
}

func createExampleConfig() {
	if err := config.WriteExample("./.softkeys.toml"); err != nil {
		slog.ErrorContext(logCtx, "Error creating example config file", "error", err)
		os.Exit(1)
	}
}

// bindFlags fills flags the user did not pass from the config, and pushes flags the user
// did pass into viper so that config.Load sees them.
func bindFlags(cmd *cobra.Command) error {
	var errs error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Viper compares case-insensitively, so camelCase config keys only need the hyphens removed.
		configName := strings.ReplaceAll(f.Name, "-", "")

		switch {
		case f.Changed:
			viper.Set(configName, f.Value.String())
		case viper.IsSet(configName):
			val := viper.Get(configName)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("flag %s: %w", f.Name, err))

				return
			}

			slog.DebugContext(logCtx, "Flag set to config value", "flag", f.Name, "value", val)
		}
	})

	return errs
}
