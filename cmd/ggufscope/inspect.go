package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/ggufscope/internal/inspect"
	"github.com/samcharles93/ggufscope/internal/logger"
	"github.com/samcharles93/ggufscope/internal/scan"
	"github.com/samcharles93/ggufscope/pkg/gguf"
)

func inspectCmd() *cli.Command {
	var (
		showKV  bool
		tensors int64
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print a summary of a .gguf file",
		ArgsUsage: "<file>",
		Flags: append(parseFlags(),
			&cli.BoolFlag{
				Name:        "kv",
				Usage:       "print every metadata entry",
				Destination: &showKV,
			},
			&cli.Int64Flag{
				Name:        "tensors",
				Usage:       "tensors to list (0 for none, -1 for all)",
				Value:       10,
				Destination: &tensors,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := loadReport(ctx, cmd)
			if err != nil {
				return err
			}
			return r.WriteText(os.Stdout, inspect.TextOptions{ShowKV: showKV, Tensors: int(tensors)})
		},
	}
}

func dumpCmd() *cli.Command {
	var pretty bool

	return &cli.Command{
		Name:      "dump",
		Usage:     "Write the full report of a .gguf file as JSON",
		ArgsUsage: "<file>",
		Flags: append(parseFlags(),
			&cli.BoolFlag{
				Name:        "pretty",
				Usage:       "indent the JSON output",
				Destination: &pretty,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// dump never truncates unless asked to.
			if !cmd.IsSet("array-limit") && appConfig.ArrayLimit == nil {
				arrayLimit = -1
			}
			r, err := loadReport(ctx, cmd)
			if err != nil {
				return err
			}
			return r.WriteJSON(os.Stdout, pretty)
		},
	}
}

// loadReport parses the file named by the first argument.
func loadReport(ctx context.Context, cmd *cli.Command) (*inspect.Report, error) {
	log := logger.FromContext(ctx)
	applyParseConfig(cmd, appConfig)

	path := cmd.Args().First()
	if path == "" {
		return nil, cli.Exit(fmt.Sprintf("error: %s requires a file argument", cmd.Name), 1)
	}

	r, err := scan.File(path, scanOptions(0))
	if err != nil {
		var perr *gguf.ParseError
		if errors.As(err, &perr) {
			log.Error("parse failed", "file", path, "stage", perr.Stage.String(), "offset", perr.Offset, "kind", gguf.ErrorKind(err))
		}
		return nil, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	if len(r.DuplicateKeys) > 0 {
		log.Warn("duplicate metadata keys", "file", path, "keys", r.DuplicateKeys)
	}
	log.Debug("parsed", "file", path, "version", r.Version, "tensors", r.TensorCount, "kv", r.KVCount)
	return r, nil
}

func scanOptions(workers int64) scan.Options {
	return scan.Options{
		Workers: int(workers),
		Parse:   gguf.Options{MaxDepth: int(maxDepth)},
		Report:  inspect.Options{ArrayLimit: int(arrayLimit)},
	}
}
