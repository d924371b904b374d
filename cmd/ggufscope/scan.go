package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/ggufscope/internal/logger"
	"github.com/samcharles93/ggufscope/internal/scan"
	"github.com/samcharles93/ggufscope/pkg/gguf"
)

func scanCmd() *cli.Command {
	var (
		modelsPath string
		workers    int64
	)

	return &cli.Command{
		Name:  "scan",
		Usage: "Parse every .gguf file in a directory",
		Flags: append(parseFlags(),
			&cli.StringFlag{
				Name:        "models-path",
				Aliases:     []string{"path"},
				Usage:       "directory containing .gguf files",
				Destination: &modelsPath,
			},
			&cli.Int64Flag{
				Name:        "workers",
				Usage:       "concurrent parses (0 for GOMAXPROCS)",
				Destination: &workers,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyParseConfig(cmd, appConfig)
			if appConfig.Workers != nil && !cmd.IsSet("workers") {
				workers = *appConfig.Workers
			}

			dir, err := resolveModelsDir(modelsPath, appConfig)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			paths, err := scan.Discover(dir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if len(paths) == 0 {
				log.Warn("no .gguf files found", "dir", dir)
				return nil
			}

			start := time.Now()
			results := scan.Files(ctx, paths, scanOptions(workers))
			failed := writeScanResults(os.Stdout, results)
			log.Info("scan finished", "dir", dir, "files", len(results), "failed", failed, "elapsed", time.Since(start).Round(time.Millisecond))
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("error: %d of %d files failed to parse", failed, len(results)), 1)
			}
			return nil
		},
	}
}

// writeScanResults prints one line per file and returns the failure count.
func writeScanResults(w io.Writer, results []scan.Result) int {
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			kind := gguf.ErrorKind(res.Err)
			if kind == "" {
				kind = "error"
			}
			_, _ = fmt.Fprintf(w, "FAIL %s [%s] %v\n", res.Path, kind, res.Err)
			continue
		}
		r := res.Report
		_, _ = fmt.Fprintf(w, "OK   %s v%d tensors=%d kv=%d data_offset=%d\n",
			res.Path, r.Version, r.TensorCount, r.KVCount, r.DataOffset)
	}
	return failed
}
