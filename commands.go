package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/convertpro/internal/convert"
	"github.com/charmbracelet/convertpro/internal/speech"
	"github.com/charmbracelet/convertpro/internal/units"
	"github.com/charmbracelet/convertpro/ui"
	"github.com/charmbracelet/convertpro/utils"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	listenLoop bool

	unitCmd = &cobra.Command{
		Use:     "unit VALUE FROM TO",
		Aliases: []string{"units"},
		Short:   "Convert a value between physical units",
		Example: paragraph("convertpro unit 5 kilometer mile\nconvertpro unit 100 fahrenheit celsius"),
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return runRequest(cmd, convert.UnitRequest{Value: v, From: args[1], To: args[2]})
		},
	}

	currencyCmd = &cobra.Command{
		Use:     "currency AMOUNT FROM TO",
		Short:   "Convert an amount between currencies",
		Example: paragraph("convertpro currency 100 usd eur"),
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return runRequest(cmd, convert.CurrencyRequest{
				Amount: v,
				From:   strings.ToUpper(args[1]),
				To:     strings.ToUpper(args[2]),
			})
		},
	}

	askCmd = &cobra.Command{
		Use:     "ask QUESTION",
		Short:   "Ask the AI advisor a conversion question",
		Example: paragraph(`convertpro ask "how many teaspoons are in a cup?"`),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, convert.FreeTextRequest{Query: strings.Join(args, " ")})
		},
	}

	sayCmd = &cobra.Command{
		Use:     "say PHRASE",
		Short:   "Run a spoken command given as text",
		Long:    paragraph(fmt.Sprintf("\nRun a command as if it had been spoken, for example %s.", keyword("convert 5 usd to eur"))),
		Example: paragraph("convertpro say convert 10 kilogram to pound"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			defer closeApp(a)

			_, res := a.dispatcher.HandleUtterance(cmd.Context(), strings.Join(args, " "))
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	listenCmd = &cobra.Command{
		Use:   "listen",
		Short: "Listen for a spoken command",
		Long: paragraph(fmt.Sprintf("\nRecord a phrase with the configured listen command and run it. "+
			"When stdin is a pipe, %s is treated as a spoken phrase.", keyword("every line"))),
		Example: paragraph("convertpro listen\nconvertpro listen --loop\necho 'convert 3 feet to meter' | convertpro listen"),
		Args:    cobra.NoArgs,
		RunE:    runListen,
	}
)

func init() {
	listenCmd.Flags().BoolVarP(&listenLoop, "loop", "l", false, "keep listening until interrupted")
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// newRecognizer reads phrases from a piped stdin, or runs the configured
// listen command.
func newRecognizer() (speech.Recognizer, bool, error) {
	if yes, err := stdinIsPipe(); err != nil {
		return nil, false, err
	} else if yes {
		return speech.NewLineRecognizer(os.Stdin), true, nil
	}
	return speech.NewCommandRecognizer(viper.GetString("listen.command"), viper.GetDuration("listen.timeout")), false, nil
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, convert.NewFailure(convert.KindNumericParseError, fmt.Sprintf("%q is not a valid number.", s), err)
	}
	return v, nil
}

func runRequest(cmd *cobra.Command, req convert.Request) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer closeApp(a)

	return printResult(cmd.OutOrStdout(), a.dispatcher.Dispatch(cmd.Context(), req))
}

func runListen(cmd *cobra.Command, _ []string) error {
	rec, piped, err := newRecognizer()
	if err != nil {
		return err
	}
	a, err := newApp(rec)
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctx := cmd.Context()
	loop := listenLoop || piped
	w := cmd.OutOrStdout()

	for {
		heard, _, res := a.dispatcher.Listen(ctx)
		if heard != "" {
			fmt.Fprintln(w, lipgloss.NewStyle().Faint(true).Render("You said: "+heard))
		}

		// end of piped input
		if errors.Is(res.Err(), io.EOF) {
			return nil
		}
		if !loop {
			return printResult(w, res)
		}
		if err := printResult(w, res); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func printResult(w io.Writer, res convert.Result) error {
	if !res.OK() {
		return res.Err()
	}
	if !res.IsText() {
		_, err := fmt.Fprintln(w, res.Display())
		return err //nolint:wrapcheck
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		utils.GlamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(res.Text)
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}
	if _, err = fmt.Fprint(w, out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

func closeApp(a *app) {
	if err := a.Close(); err != nil {
		log.Warn("Shutdown incomplete", "err", err)
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the flag/config style if unset
	if err := validateStyle(cfg.GlamourStyle); err != nil {
		cfg.GlamourStyle = style
	}
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.StartSection = startSection

	a, err := newApp(speech.NewCommandRecognizer(viper.GetString("listen.command"), viper.GetDuration("listen.timeout")))
	if err != nil {
		return err
	}
	defer closeApp(a)

	cfg.Currencies = a.router.Currencies()
	cfg.UnitCategories = units.Categories()
	watchConfig(a)

	var monitor ui.SpeechMonitor
	if a.queue != nil {
		monitor = a.queue
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cmd.Context(), cfg, a.dispatcher, monitor).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

// watchConfig applies speech toggles from the config file while running.
func watchConfig(a *app) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Debug("fsnotify event", "file", e.Name, "event", e.Op)
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		a.dispatcher.SetSpeak(viper.GetBool("speech.enabled"))
		log.Info("Reloaded configuration", "speak", a.dispatcher.Speaking())
	})
	viper.WatchConfig()
}
