// Package api serves GGUF inspection over HTTP.
package api

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/ggufscope/internal/inspect"
	"github.com/samcharles93/ggufscope/internal/logger"
	"github.com/samcharles93/ggufscope/internal/scan"
	"github.com/samcharles93/ggufscope/internal/version"
	"github.com/samcharles93/ggufscope/pkg/gguf"
)

// DefaultMaxUploadBytes caps POST /v1/inspect bodies. Uploads only need
// the header and tables, not tensor data.
const DefaultMaxUploadBytes = 64 << 20

type Config struct {
	// ModelsDir enables the /v1/files endpoints when set.
	ModelsDir      string
	MaxUploadBytes int64
	StoreCapacity  int
	Parse          gguf.Options
	Report         inspect.Options
	Logger         logger.Logger
}

type Server struct {
	cfg   Config
	store *ReportStore
	log   logger.Logger
	clock func() time.Time
}

func NewServer(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		cfg:   cfg,
		store: NewReportStore(cfg.StoreCapacity),
		log:   log.With("component", "api"),
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(requestID)

	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/inspect", s.handleInspect)
	e.GET("/v1/reports/:id", s.handleGetReport)
	e.DELETE("/v1/reports/:id", s.handleDeleteReport)
	e.GET("/v1/files", s.handleListFiles)
	e.GET("/v1/files/:name", s.handleInspectFile)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.String(),
	})
}

// handleInspect parses the request body as a container.
func (s *Server) handleInspect(c *echo.Context) error {
	opts, err := s.reportOptions(c)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	body := http.MaxBytesReader(c.Response(), c.Request().Body, s.cfg.MaxUploadBytes)
	buf, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", "request body exceeds upload limit")
		}
		return writeBadRequest(c, err.Error())
	}

	f, err := gguf.ParseWithOptions(buf, s.cfg.Parse)
	if err != nil {
		s.log.Warn("parse failed", "request_id", c.Get(requestIDKey), "bytes", len(buf), "error", err)
		return writeParseError(c, err)
	}
	r := inspect.Build(f, opts)
	r.Size = int64(len(buf))
	s.noteDuplicates(c, r)
	s.store.Put(r, s.clock())
	return writeJSON(c, http.StatusOK, r)
}

func (s *Server) handleGetReport(c *echo.Context) error {
	r, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "report not found")
	}
	return writeJSON(c, http.StatusOK, r)
}

func (s *Server) handleDeleteReport(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "report not found")
	}
	return writeJSON(c, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

type fileEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (s *Server) handleListFiles(c *echo.Context) error {
	if s.cfg.ModelsDir == "" {
		return writeNotFound(c, "models directory not configured")
	}
	paths, err := scan.Discover(s.cfg.ModelsDir)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	data := make([]fileEntry, 0, len(paths))
	for _, p := range paths {
		entry := fileEntry{Name: filepath.Base(p)}
		if st, err := os.Stat(p); err == nil {
			entry.Size = st.Size()
		}
		data = append(data, entry)
	}
	return writeJSON(c, http.StatusOK, map[string]any{"object": "list", "data": data})
}

func (s *Server) handleInspectFile(c *echo.Context) error {
	if s.cfg.ModelsDir == "" {
		return writeNotFound(c, "models directory not configured")
	}
	name := c.Param("name")
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") ||
		!strings.HasSuffix(strings.ToLower(name), scan.Ext) {
		return writeBadRequest(c, "invalid file name")
	}
	opts, err := s.reportOptions(c)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	path := filepath.Join(s.cfg.ModelsDir, name)
	r, err := scan.File(path, scan.Options{Parse: s.cfg.Parse, Report: opts})
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return writeNotFound(c, "file not found")
	case err != nil && gguf.ErrorKind(err) != "":
		s.log.Warn("parse failed", "request_id", c.Get(requestIDKey), "file", name, "error", err)
		return writeParseError(c, err)
	case err != nil:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	r.Path = name
	s.noteDuplicates(c, r)
	s.store.Put(r, s.clock())
	return writeJSON(c, http.StatusOK, r)
}

func (s *Server) reportOptions(c *echo.Context) (inspect.Options, error) {
	opts := s.cfg.Report
	limit, err := intQuery(c, "array_limit", opts.ArrayLimit)
	if err != nil || (c.QueryParam("array_limit") != "" && limit < 0) {
		return opts, errors.New("array_limit must be a non-negative integer")
	}
	opts.ArrayLimit = limit
	return opts, nil
}

func (s *Server) noteDuplicates(c *echo.Context, r *inspect.Report) {
	if len(r.DuplicateKeys) > 0 {
		s.log.Warn("duplicate metadata keys", "request_id", c.Get(requestIDKey), "keys", r.DuplicateKeys)
	}
}
