package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoblock/internal/config"
	"github.com/javiermolinar/chronoblock/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  chronoblock config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runConfigInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Config file (default: ~/.config/chronoblock/config.toml)")

	return cmd
}

func runConfigInteractive(in io.Reader, out io.Writer, configPath string) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	isNew := os.IsNotExist(fileErr)

	if isNew {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Schedule.DefaultDuration = promptInt(reader, out, "Default block minutes", cfg.Schedule.DefaultDuration)
	cfg.Schedule.DayStart = promptValue(reader, out, "Day start", cfg.Schedule.DayStart)
	cfg.Schedule.DayEnd = promptValue(reader, out, "Day end", cfg.Schedule.DayEnd)
	cfg.Schedule.Workdays = promptSlice(reader, out, "Workdays (comma-separated)", cfg.Schedule.Workdays)
	cfg.Schedule.SlotMinutes = promptInt(reader, out, "Slot minutes", cfg.Schedule.SlotMinutes)
	cfg.Storage.Driver = promptValue(reader, out, "Storage driver (sqlite, postgres, json)", cfg.Storage.Driver)
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		cfg.Storage.DatabaseURL = promptValue(reader, out, "Database URL", cfg.Storage.DatabaseURL)
	case config.DriverJSON:
		cfg.Storage.JSONPath = promptValue(reader, out, "JSON file path", cfg.Storage.JSONPath)
	default:
		cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	}
	cfg.UI.Theme = promptTheme(reader, out, cfg.UI.Theme)
	cfg.Log.Level = promptValue(reader, out, "Log level", cfg.Log.Level)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[schedule]")
	fmt.Fprintf(out, "  default_duration = %d\n", cfg.Schedule.DefaultDuration)
	fmt.Fprintf(out, "  day_start        = %s\n", cfg.Schedule.DayStart)
	fmt.Fprintf(out, "  day_end          = %s\n", cfg.Schedule.DayEnd)
	fmt.Fprintf(out, "  workdays         = %s\n", strings.Join(cfg.Schedule.Workdays, ", "))
	fmt.Fprintf(out, "  slot_minutes     = %d\n", cfg.Schedule.SlotMinutes)
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  driver           = %s\n", cfg.Storage.Driver)
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		fmt.Fprintf(out, "  database_url     = %s\n", redactURL(cfg.Storage.DatabaseURL))
		fmt.Fprintf(out, "  max_conns        = %d\n", cfg.Storage.MaxConns)
		fmt.Fprintf(out, "  connect_timeout  = %d\n", cfg.Storage.ConnectTimeout)
	case config.DriverJSON:
		fmt.Fprintf(out, "  json_path        = %s\n", cfg.Storage.JSONPath)
	default:
		fmt.Fprintf(out, "  db_path          = %s\n", cfg.Storage.DBPath)
	}
	fmt.Fprintf(out, "  save_timeout     = %d\n", cfg.Storage.SaveTimeout)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme            = %s\n", cfg.UI.Theme)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  level            = %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "  format           = %s\n", cfg.Log.Format)
	if cfg.Log.File != "" {
		fmt.Fprintf(out, "  file             = %s\n", cfg.Log.File)
	}
}

// redactURL hides the password in a connection string.
func redactURL(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return url
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return url
	}
	return scheme + "://" + user + ":****@" + host
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, out io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, out, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(out, "  Invalid number %q\n", value)
		if _, peekErr := reader.Peek(1); peekErr != nil {
			return current
		}
	}
}

func promptSlice(reader *bufio.Reader, out io.Writer, label string, current []string) []string {
	currentStr := strings.Join(current, ", ")
	fmt.Fprintf(out, "  %s [%s]: ", label, currentStr)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func promptTheme(reader *bufio.Reader, out io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, out, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(out, "  Invalid theme %q. Available: %s\n", value, options)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}
