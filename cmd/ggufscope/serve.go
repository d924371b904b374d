package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/ggufscope/internal/api"
	"github.com/samcharles93/ggufscope/internal/inspect"
	"github.com/samcharles93/ggufscope/internal/logger"
	"github.com/samcharles93/ggufscope/pkg/gguf"
)

func serveCmd() *cli.Command {
	var (
		addr           string
		modelsPath     string
		maxUploadBytes int64
		readTimeout    time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the inspection API",
		Flags: append(parseFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "models-path",
				Aliases:     []string{"path"},
				Usage:       "directory served under /v1/files",
				Destination: &modelsPath,
			},
			&cli.Int64Flag{
				Name:        "max-upload-bytes",
				Usage:       "largest accepted POST /v1/inspect body",
				Value:       api.DefaultMaxUploadBytes,
				Destination: &maxUploadBytes,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyParseConfig(cmd, appConfig)
			if appConfig.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = appConfig.ServerAddress
			}
			if appConfig.MaxUploadBytes != nil && !cmd.IsSet("max-upload-bytes") {
				maxUploadBytes = *appConfig.MaxUploadBytes
			}

			// The files endpoints are optional.
			dir, err := resolveModelsDir(modelsPath, appConfig)
			if err != nil {
				dir = ""
				log.Info("no models directory configured; /v1/files disabled")
			}

			server := api.NewServer(api.Config{
				ModelsDir:      dir,
				MaxUploadBytes: maxUploadBytes,
				Parse:          gguf.Options{MaxDepth: int(maxDepth)},
				Report:         inspect.Options{ArrayLimit: int(arrayLimit)},
				Logger:         log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "models_dir", dir)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
