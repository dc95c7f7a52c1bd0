package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mchmarny/passcheck/pkg/config"
	"github.com/mchmarny/passcheck/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const historyLimitFlagName = "limit"

var errHistoryDisabled = errors.New("history is disabled in config")

func newHistoryCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "history",
		Aliases:         []string{"h"},
		Usage:           "List recorded evaluations (scores only, never passwords)",
		HideHelpCommand: true,
		Action:          cmdHistoryList,
		Flags: []urfave.Flag{
			&urfave.IntFlag{
				Name:  historyLimitFlagName,
				Usage: "Limits number of results returned",
				Value: data.HistoryLimitDefault,
			},
		},
		Commands: []*urfave.Command{
			{
				Name:   "summary",
				Usage:  "Count recorded evaluations per tier",
				Action: cmdHistorySummary,
			},
			{
				Name:   "clear",
				Usage:  "Delete all recorded evaluations",
				Action: cmdHistoryClear,
			},
		},
	}
}

func historyDB(cmd *urfave.Command) (*appConfig, error) {
	cfg, err := requireConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.DB == nil {
		return nil, errHistoryDisabled
	}
	return cfg, nil
}

func cmdHistoryList(_ context.Context, cmd *urfave.Command) error {
	cfg, err := historyDB(cmd)
	if err != nil {
		return err
	}

	list, err := data.ListEvaluations(cfg.DB, cmd.Int(historyLimitFlagName))
	if err != nil {
		return fmt.Errorf("listing evaluations: %w", err)
	}

	w := cmd.Root().Writer
	if cfg.Config.Format != config.FormatText {
		return encode(w, cfg.Config.Format, list)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EVALUATED\tSOURCE\tSCORE\tPERCENT\tTIER\tLENGTH\tEXPIRED")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%t\n",
			e.EvaluatedAt.Local().Format(time.DateTime), e.Source, e.Score, e.Percent, e.Tier, e.LengthBucket, e.Expired)
	}
	return tw.Flush()
}

func cmdHistorySummary(_ context.Context, cmd *urfave.Command) error {
	cfg, err := historyDB(cmd)
	if err != nil {
		return err
	}

	summary, err := data.SummarizeEvaluations(cfg.DB)
	if err != nil {
		return fmt.Errorf("summarizing evaluations: %w", err)
	}

	format := cfg.Config.Format
	if format == config.FormatText {
		format = config.FormatYAML
	}
	return encode(cmd.Root().Writer, format, summary)
}

func cmdHistoryClear(_ context.Context, cmd *urfave.Command) error {
	cfg, err := historyDB(cmd)
	if err != nil {
		return err
	}

	n, err := data.ClearEvaluations(cfg.DB)
	if err != nil {
		return fmt.Errorf("clearing evaluations: %w", err)
	}

	_, err = fmt.Fprintf(cmd.Root().Writer, "Deleted %d evaluations.\n", n)
	return err
}
