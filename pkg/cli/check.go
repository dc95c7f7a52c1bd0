package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mchmarny/passcheck/pkg/config"
	"github.com/mchmarny/passcheck/pkg/data"
	"github.com/mchmarny/passcheck/pkg/strength"
	urfave "github.com/urfave/cli/v3"
	"github.com/zalando/go-keyring"
)

const (
	dateLayout = "2006-01-02"

	sourcePrompt  = "prompt"
	sourceStdin   = "stdin"
	sourceKeyring = "keyring"
	sourceAPI     = "api"
	sourceBatch   = "batch"
)

const (
	createdFlagName        = "created"
	stdinFlagName          = "stdin"
	keyringServiceFlagName = "keyring-service"
	keyringUserFlagName    = "keyring-user"
	strictFlagName         = "strict"
)

func newCreatedFlag() urfave.Flag {
	return &urfave.StringFlag{
		Name:  createdFlagName,
		Usage: "Password creation date (YYYY-MM-DD or RFC3339), enables expiry checks",
	}
}

func newStrictFlag() urfave.Flag {
	return &urfave.BoolFlag{
		Name:  strictFlagName,
		Usage: "Also penalize exact matches in the loaded reference lists",
	}
}

func newCheckCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "check",
		Aliases: []string{"c"},
		Usage:   "Evaluate a single password",
		UsageText: `passcheck check                                   # prompt without echo
   passcheck check --created 2026-01-02              # include expiry feedback
   passcheck check --keyring-service github --keyring-user me`,
		HideHelpCommand: true,
		Action:          cmdCheck,
		Flags: []urfave.Flag{
			newCreatedFlag(),
			&urfave.BoolFlag{
				Name:  stdinFlagName,
				Usage: "Read the password from the first line of stdin",
			},
			&urfave.StringFlag{
				Name:  keyringServiceFlagName,
				Usage: "Evaluate the secret stored in the OS keychain under this service",
			},
			&urfave.StringFlag{
				Name:  keyringUserFlagName,
				Usage: "Keychain user for --keyring-service",
			},
			newStrictFlag(),
		},
	}
}

type checkOptions struct {
	created        *time.Time
	stdin          bool
	keyringService string
	keyringUser    string
	strict         bool
}

func cmdCheck(ctx context.Context, cmd *urfave.Command) error {
	created, err := parseCreated(cmd.String(createdFlagName))
	if err != nil {
		return err
	}

	opts := checkOptions{
		created:        created,
		stdin:          cmd.Bool(stdinFlagName),
		keyringService: cmd.String(keyringServiceFlagName),
		keyringUser:    cmd.String(keyringUserFlagName),
		strict:         cmd.Bool(strictFlagName),
	}

	if (opts.keyringService == "") != (opts.keyringUser == "") {
		return errors.New("--keyring-service and --keyring-user must be used together")
	}

	return runCheck(ctx, cmd, opts)
}

func runCheck(ctx context.Context, cmd *urfave.Command, opts checkOptions) error {
	cfg, err := requireConfig(cmd)
	if err != nil {
		return err
	}

	eval, _, err := newEvaluator(cfg, opts.strict, observeMetrics(secretSource(opts)))
	if err != nil {
		return err
	}

	root := cmd.Root()
	password, source, err := readSecret(root.Reader, root.ErrWriter, opts)
	if err != nil {
		return err
	}

	res, err := eval.Evaluate(ctx, password, opts.created)
	if err != nil {
		return fmt.Errorf("evaluating password: %w", err)
	}

	recordEvaluation(cfg, source, utf8.RuneCountInString(password), res)

	return printResult(root.Writer, cfg.Config.Format, res)
}

// secretSource names where readSecret takes the password from.
func secretSource(opts checkOptions) string {
	switch {
	case opts.keyringService != "":
		return sourceKeyring
	case opts.stdin:
		return sourceStdin
	default:
		return sourcePrompt
	}
}

func readSecret(in io.Reader, prompt io.Writer, opts checkOptions) (string, string, error) {
	source := secretSource(opts)
	switch source {
	case sourceKeyring:
		secret, err := keyring.Get(opts.keyringService, opts.keyringUser)
		if err != nil {
			return "", "", fmt.Errorf("reading secret from keychain (%s/%s): %w", opts.keyringService, opts.keyringUser, err)
		}
		return secret, source, nil
	case sourceStdin:
		p, err := readLine(in)
		return p, source, err
	default:
		p, err := promptPassword(in, prompt)
		return p, source, err
	}
}

func printResult(w io.Writer, format string, res *strength.Result) error {
	if format == config.FormatText {
		_, err := fmt.Fprintf(w, "Score: %d\n%s\n", res.Score, res.Feedback)
		return err
	}
	if err := encode(w, format, res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func recordEvaluation(cfg *appConfig, source string, length int, res *strength.Result) {
	if cfg == nil || cfg.DB == nil || res == nil {
		return
	}
	e := &data.Evaluation{
		Source:       source,
		Score:        res.Score,
		Percent:      res.Percent,
		Tier:         string(res.Tier),
		LengthBucket: data.LengthBucket(length),
		Expired:      res.Expired,
	}
	if err := data.SaveEvaluation(cfg.DB, e); err != nil {
		slog.Warn("failed to record evaluation", "error", err)
	}
}

func parseCreated(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid creation date %q, expected YYYY-MM-DD or RFC3339", v)
	}
	return &t, nil
}
