package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mchmarny/passcheck/pkg/config"
	"github.com/mchmarny/passcheck/pkg/net"
	"github.com/mchmarny/passcheck/pkg/reference"
	urfave "github.com/urfave/cli/v3"
)

const (
	commonURLFlagName     = "common-url"
	dictionaryURLFlagName = "dictionary-url"
)

func newListsCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "lists",
		Aliases:         []string{"l"},
		Usage:           "Manage the reference word lists",
		HideHelpCommand: true,
		Commands: []*urfave.Command{
			{
				Name:  "download",
				Usage: "Download reference lists into the config directory and use them",
				UsageText: `passcheck lists download \
     --common-url https://example.com/10k-most-common.txt \
     --dictionary-url https://example.com/words.txt`,
				Action: cmdListsDownload,
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:  commonURLFlagName,
						Usage: "URL of a newline-delimited common passwords list",
					},
					&urfave.StringFlag{
						Name:  dictionaryURLFlagName,
						Usage: "URL of a newline-delimited dictionary words list",
					},
				},
			},
			{
				Name:   "info",
				Usage:  "Show the configured reference lists and their sizes",
				Action: cmdListsInfo,
			},
		},
	}
}

// ListInfo describes a loaded reference list.
type ListInfo struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Words int    `json:"words" yaml:"words"`
}

func cmdListsDownload(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := requireConfig(cmd)
	if err != nil {
		return err
	}

	commonURL := cmd.String(commonURLFlagName)
	dictURL := cmd.String(dictionaryURLFlagName)
	if commonURL == "" && dictURL == "" {
		return errors.New("at least one of --common-url or --dictionary-url is required")
	}

	client := net.GetHTTPClient()
	var infos []*ListInfo

	if commonURL != "" {
		path := filepath.Join(cfg.Dir, config.CommonPasswordsDefault)
		info, err := downloadList(ctx, client, "common", commonURL, path)
		if err != nil {
			return err
		}
		cfg.Config.CommonPasswords = path
		infos = append(infos, info)
	}

	if dictURL != "" {
		path := filepath.Join(cfg.Dir, config.DictionaryWordsDefault)
		info, err := downloadList(ctx, client, "dictionary", dictURL, path)
		if err != nil {
			return err
		}
		cfg.Config.DictionaryWords = path
		infos = append(infos, info)
	}

	if err := saveListPaths(cfg); err != nil {
		return err
	}

	return printLists(cmd, infos)
}

// saveListPaths persists only the list paths so flag overrides of this run
// are not written to the config file.
func saveListPaths(cfg *appConfig) error {
	stored, err := config.ReadOrCreate(cfg.Dir)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	stored.CommonPasswords = cfg.Config.CommonPasswords
	stored.DictionaryWords = cfg.Config.DictionaryWords
	if err := config.Save(cfg.Dir, stored); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func downloadList(ctx context.Context, client net.Doer, name, url, path string) (*ListInfo, error) {
	n, err := net.Download(ctx, client, url, path)
	if err != nil {
		return nil, fmt.Errorf("downloading %s list: %w", name, err)
	}
	slog.Info("list downloaded", "name", name, "bytes", n, "path", path)

	s, err := reference.Load(path)
	if err != nil {
		return nil, fmt.Errorf("validating %s list: %w", name, err)
	}
	return &ListInfo{Name: name, Path: path, Words: s.Len()}, nil
}

func cmdListsInfo(_ context.Context, cmd *urfave.Command) error {
	cfg, err := requireConfig(cmd)
	if err != nil {
		return err
	}

	sets, err := loadReferenceSets(cfg)
	if err != nil {
		return err
	}

	return printLists(cmd, []*ListInfo{
		{Name: "common", Path: config.ResolvePath(cfg.Dir, cfg.Config.CommonPasswords), Words: sets.Common.Len()},
		{Name: "dictionary", Path: config.ResolvePath(cfg.Dir, cfg.Config.DictionaryWords), Words: sets.Dictionary.Len()},
	})
}

func printLists(cmd *urfave.Command, infos []*ListInfo) error {
	w := cmd.Root().Writer
	format := getConfig(cmd).Config.Format
	if format != config.FormatText {
		return encode(w, format, infos)
	}
	for _, i := range infos {
		if _, err := fmt.Fprintf(w, "%s: %d words (%s)\n", i.Name, i.Words, i.Path); err != nil {
			return err
		}
	}
	return nil
}
