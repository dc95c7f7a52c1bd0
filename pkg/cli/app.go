package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mchmarny/passcheck/pkg/config"
	"github.com/mchmarny/passcheck/pkg/data"
	"github.com/mchmarny/passcheck/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "passcheck"
	appConfigKey = "app-config"

	debugFlagName      = "debug"
	configDirFlagName  = "config"
	commonFlagName     = "common"
	dictionaryFlagName = "dictionary"
	formatFlagName     = "format"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// globalFlags are created per app so parsed values never leak between runs.
func globalFlags() []urfave.Flag {
	return []urfave.Flag{
		&urfave.BoolFlag{
			Name:  debugFlagName,
			Usage: "Prints verbose logs (optional, default: false)",
		},
		&urfave.StringFlag{
			Name:    configDirFlagName,
			Usage:   "Path to the config directory (default: $HOME/.passcheck)",
			Sources: urfave.EnvVars("PASSCHECK_CONFIG"),
		},
		&urfave.StringFlag{
			Name:  commonFlagName,
			Usage: "Path to the common passwords list (one per line)",
		},
		&urfave.StringFlag{
			Name:  dictionaryFlagName,
			Usage: "Path to the dictionary words list (one per line)",
		},
		&urfave.StringFlag{
			Name:  formatFlagName,
			Usage: "Output format [text, json, yaml]",
		},
	}
}

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(config.LogLevelDefault)

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Dir    string
	Config *config.Config
	DB     *sql.DB
}

func getConfig(cmd *urfave.Command) *appConfig {
	cfg, _ := cmd.Root().Metadata[appConfigKey].(*appConfig)
	return cfg
}

func newApp(in io.Reader, out, errOut io.Writer) *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Evaluate password strength with a weighted heuristic model",
		Reader:                in,
		Writer:                out,
		ErrWriter:             errOut,
		Metadata:              map[string]any{},
		Flags:                 globalFlags(),
		Commands: []*urfave.Command{
			newCheckCmd(),
			newBatchCmd(),
			newListsCmd(),
			newHistoryCmd(),
			newServerCmd(),
			newConfigCmd(),
		},
		Action: func(ctx context.Context, cmd *urfave.Command) error {
			return runCheck(ctx, cmd, checkOptions{})
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			cfg, err := loadAppConfig(cmd)
			if err != nil {
				return ctx, err
			}
			cmd.Metadata[appConfigKey] = cfg
			return ctx, nil
		},
		After: func(_ context.Context, cmd *urfave.Command) error {
			if cfg := getConfig(cmd); cfg != nil && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

func loadAppConfig(cmd *urfave.Command) (*appConfig, error) {
	dir := cmd.String(configDirFlagName)
	if dir == "" {
		d, _, err := config.GetOrCreateHomeDir(appName)
		if err != nil {
			return nil, fmt.Errorf("resolving config directory: %w", err)
		}
		dir = d
	}

	c, err := config.ReadOrCreate(dir)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if v := cmd.String(commonFlagName); v != "" {
		c.CommonPasswords = v
	}
	if v := cmd.String(dictionaryFlagName); v != "" {
		c.DictionaryWords = v
	}
	if v := cmd.String(formatFlagName); v != "" {
		c.Format = v
	}
	if cmd.Bool(debugFlagName) {
		c.LogLevel = "debug"
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	initLogging(c.LogLevel)
	slog.Debug("config loaded", "dir", dir, "format", c.Format, "history", c.History)

	cfg := &appConfig{
		Dir:    dir,
		Config: c,
	}

	if c.History {
		dbPath := filepath.Join(dir, data.DataFileName)
		if err := data.Init(dbPath); err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		db, err := data.GetDB(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		cfg.DB = db
	}

	return cfg, nil
}

func initLogging(level string) {
	logging.SetDefaultCLILogger(level)
}

var errNoConfig = errors.New("app config not initialized")

func requireConfig(cmd *urfave.Command) (*appConfig, error) {
	cfg := getConfig(cmd)
	if cfg == nil || cfg.Config == nil {
		return nil, errNoConfig
	}
	return cfg, nil
}

func encode(w io.Writer, format string, v any) error {
	if format == config.FormatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
