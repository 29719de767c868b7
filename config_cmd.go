package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# glamour style for AI answers: name or JSON path (default "auto")
style: "auto"
# word-wrap AI answers at width (0 uses the terminal width)
width: 0
# mouse support (TUI-mode only)
mouse: false
# tab shown on start: unit, currency or ask
start: "unit"
# file with GROQ_API_KEY and EXCHANGE_RATE_API_KEY
env_file: ".env"

speech:
  # speak results aloud
  enabled: true
  # read recognized phrases back ("You said ...")
  echo: true
  # engine: system (espeak-ng, espeak or say), gtts or none
  engine: "system"
  # voice name for the system engine
  voice: ""
  # words per minute for the system engine (0 keeps its default)
  rate: 0
  # how long to wait for queued speech on exit
  shutdown_timeout: "30s"
  gtts:
    language: "en"
    slow: false

listen:
  # command that records one phrase and prints its transcript
  command: ""
  timeout: "30s"

currency:
  # codes recognized in spoken commands
  codes: [USD, EUR, GBP, INR, JPY, CAD, AUD, PKR, CNY, SGD, AED, CHF, MYR, THB, SAR, NZD]
  timeout: "10s"
  requests_per_minute: 30
  cache:
    # how long rate tables are reused (0 disables caching)
    ttl: "1h"
    size: 32
    # share rates between processes through Redis
    redis:
      addr: ""
      password: ""
      db: 0

advisor:
  model: "llama-3.3-70b-versatile"
  timeout: "60s"
  requests_per_minute: 30
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the convertpro config file",
	Long:    paragraph(fmt.Sprintf("\n%s the convertpro config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("convertpro config\nconvertpro config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("ConvertPro", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
