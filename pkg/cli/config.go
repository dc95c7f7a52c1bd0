package cli

import (
	"context"

	"github.com/mchmarny/passcheck/pkg/config"
	urfave "github.com/urfave/cli/v3"
)

func newConfigCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "config",
		Usage:           "Print the effective configuration",
		HideHelpCommand: true,
		Action:          cmdConfig,
	}
}

type configView struct {
	Dir    string         `json:"dir" yaml:"dir"`
	Config *config.Config `json:"config" yaml:"config"`
}

func cmdConfig(_ context.Context, cmd *urfave.Command) error {
	cfg, err := requireConfig(cmd)
	if err != nil {
		return err
	}

	format := cfg.Config.Format
	if format == config.FormatText {
		format = config.FormatYAML
	}
	return encode(cmd.Root().Writer, format, &configView{
		Dir:    cfg.Dir,
		Config: cfg.Config,
	})
}
