package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/mchmarny/passcheck/pkg/config"
	"github.com/mchmarny/passcheck/pkg/strength"
	urfave "github.com/urfave/cli/v3"
)

const (
	batchFileFlagName   = "file"
	concurrencyFlagName = "concurrency"
)

func newBatchCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "batch",
		Aliases:         []string{"b"},
		Usage:           "Evaluate every password in a file, printing results without the passwords",
		UsageText:       `passcheck batch --file passwords.txt --format json`,
		HideHelpCommand: true,
		Action:          cmdBatch,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     batchFileFlagName,
				Aliases:  []string{"f"},
				Usage:    "File with one password per line (use - for stdin)",
				Required: true,
			},
			newCreatedFlag(),
			newStrictFlag(),
			&urfave.IntFlag{
				Name:  concurrencyFlagName,
				Usage: "Maximum number of concurrent evaluations (default from config)",
			},
		},
	}
}

// BatchItem is a batch result, keyed by the input line number.
type BatchItem struct {
	Line    int           `json:"line" yaml:"line"`
	Score   int           `json:"score" yaml:"score"`
	Percent int           `json:"percent" yaml:"percent"`
	Tier    strength.Tier `json:"tier" yaml:"tier"`
	Expired bool          `json:"expired" yaml:"expired"`
}

func cmdBatch(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := requireConfig(cmd)
	if err != nil {
		return err
	}

	created, err := parseCreated(cmd.String(createdFlagName))
	if err != nil {
		return err
	}

	eval, _, err := newEvaluator(cfg, cmd.Bool(strictFlagName), observeMetrics(sourceBatch))
	if err != nil {
		return err
	}

	root := cmd.Root()
	in, closeIn, err := openBatchInput(cmd.String(batchFileFlagName), root.Reader)
	if err != nil {
		return err
	}
	defer closeIn()

	lines, inputs, err := readBatch(in)
	if err != nil {
		return err
	}
	for i := range inputs {
		inputs[i].Created = created
	}

	limit := cmd.Int(concurrencyFlagName)
	if limit <= 0 {
		limit = cfg.Config.Concurrency
	}

	results, err := eval.EvaluateAll(ctx, inputs, limit)
	if err != nil {
		return fmt.Errorf("evaluating batch: %w", err)
	}

	items := make([]*BatchItem, len(results))
	for i, r := range results {
		items[i] = &BatchItem{
			Line:    lines[i],
			Score:   r.Score,
			Percent: r.Percent,
			Tier:    r.Tier,
			Expired: r.Expired,
		}
		recordEvaluation(cfg, sourceBatch, utf8.RuneCountInString(inputs[i].Password), r)
	}

	return printBatch(root.Writer, cfg.Config.Format, items)
}

func openBatchInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening batch file %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

// readBatch returns the non-blank lines and their 1-based line numbers.
func readBatch(r io.Reader) ([]int, []strength.Input, error) {
	var (
		lines  []int
		inputs []strength.Input
	)

	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		p := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(p) == "" {
			continue
		}
		lines = append(lines, n)
		inputs = append(inputs, strength.Input{Password: p})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading batch input: %w", err)
	}
	return lines, inputs, nil
}

func printBatch(w io.Writer, format string, items []*BatchItem) error {
	if format != config.FormatText {
		if err := encode(w, format, items); err != nil {
			return fmt.Errorf("encoding batch results: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tSCORE\tPERCENT\tTIER\tEXPIRED")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%t\n", it.Line, it.Score, it.Percent, it.Tier, it.Expired)
	}
	return tw.Flush()
}
