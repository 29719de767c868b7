// Package main provides the entry point for the convertpro CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/convertpro/internal/router"
	"github.com/charmbracelet/convertpro/internal/speech"
	"github.com/charmbracelet/convertpro/utils"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	style        string
	width        uint
	mouse        bool
	speak        bool
	engine       speech.Engine
	startSection string

	rootCmd = &cobra.Command{
		Use:   "convertpro",
		Short: "Convert units and currencies, by keyboard or by voice",
		Long: paragraph(
			fmt.Sprintf("\nConvert units and currencies %s, and ask an AI when the units get weird.", keyword("by keyboard or by voice")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: runTUI,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = utils.ExpandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		configFile = utils.ExpandPath(configFile)
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	speak = viper.GetBool("speech.enabled")
	startSection = viper.GetString("start")

	e, err := speech.ParseEngine(viper.GetString("speech.engine"))
	if err != nil {
		return err //nolint:wrapcheck
	}
	engine = e

	if err := validateSpeechConfig(); err != nil {
		return fmt.Errorf("speech config validation failed: %w", err)
	}

	if _, err := router.New(viper.GetStringSlice("currency.codes")); err != nil {
		return fmt.Errorf("currency config validation failed: %w", err)
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = "notty"
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

// validateSpeechConfig validates speech configuration values.
func validateSpeechConfig() error {
	rate := viper.GetInt("speech.rate")
	if rate < 0 || rate > 600 {
		return fmt.Errorf("speech rate must be between 0 and 600 words per minute, got %d", rate)
	}

	// basic validation, not exhaustive
	lang := viper.GetString("speech.gtts.language")
	if len(lang) < 2 || len(lang) > 5 {
		return fmt.Errorf("gtts language code must be 2-5 characters, got %q", lang)
	}

	for _, key := range []string{"speech.shutdown_timeout", "listen.timeout", "currency.timeout", "advisor.timeout"} {
		if viper.GetDuration(key) < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	_ = closer()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path for AI answers")
	rootCmd.PersistentFlags().UintVarP(&width, "width", "w", 0, "word-wrap AI answers at width")
	rootCmd.PersistentFlags().Bool("speak", true, "speak results aloud")
	rootCmd.PersistentFlags().String("engine", string(speech.EngineSystem), "speech engine (system, gtts or none)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support")
	_ = rootCmd.Flags().MarkHidden("mouse")
	rootCmd.Flags().String("start", "unit", "tab shown on start (unit, currency or ask)")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.PersistentFlags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.PersistentFlags().Lookup("width"))
	_ = viper.BindPFlag("speech.enabled", rootCmd.PersistentFlags().Lookup("speak"))
	_ = viper.BindPFlag("speech.engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("start", rootCmd.Flags().Lookup("start"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("start", "unit")
	viper.SetDefault("env_file", ".env")

	// Speech defaults
	viper.SetDefault("speech.enabled", true)
	viper.SetDefault("speech.echo", true)
	viper.SetDefault("speech.engine", string(speech.EngineSystem))
	viper.SetDefault("speech.voice", "")
	viper.SetDefault("speech.rate", 0)
	viper.SetDefault("speech.shutdown_timeout", 30*time.Second)
	viper.SetDefault("speech.gtts.language", "en")
	viper.SetDefault("speech.gtts.slow", false)
	viper.SetDefault("listen.command", "")
	viper.SetDefault("listen.timeout", 30*time.Second)

	// Provider defaults
	viper.SetDefault("currency.codes", router.DefaultCurrencies)
	viper.SetDefault("currency.timeout", 10*time.Second)
	viper.SetDefault("currency.requests_per_minute", 30)
	viper.SetDefault("currency.cache.ttl", time.Hour)
	viper.SetDefault("currency.cache.size", 32)
	viper.SetDefault("currency.cache.redis.addr", "")
	viper.SetDefault("currency.cache.redis.password", "")
	viper.SetDefault("currency.cache.redis.db", 0)
	viper.SetDefault("advisor.model", "llama-3.3-70b-versatile")
	viper.SetDefault("advisor.timeout", 60*time.Second)
	viper.SetDefault("advisor.requests_per_minute", 30)

	rootCmd.AddCommand(configCmd, manCmd, unitCmd, currencyCmd, askCmd, sayCmd, listenCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "convertpro")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "convertpro")}, dirs...)
	}

	if c := os.Getenv("CONVERTPRO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("convertpro")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("convertpro")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "convertpro.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
