// Package scan parses many GGUF files concurrently. Each file is an
// independent parse; nothing is shared between workers but the results slice.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/samcharles93/ggufscope/internal/inspect"
	"github.com/samcharles93/ggufscope/internal/mapping"
	"github.com/samcharles93/ggufscope/pkg/gguf"
)

const Ext = ".gguf"

type Options struct {
	// Workers bounds concurrent parses; 0 means GOMAXPROCS.
	Workers int
	Parse   gguf.Options
	Report  inspect.Options
}

type Result struct {
	Path   string
	Report *inspect.Report
	Err    error
}

// Discover lists the *.gguf files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("models directory is empty")
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("models path is not a directory: %s", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), Ext) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// File maps and parses a single file.
func File(path string, opts Options) (*inspect.Report, error) {
	m, err := mapping.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = m.Close() }()

	f, err := gguf.ParseWithOptions(m.Bytes(), opts.Parse)
	if err != nil {
		return nil, err
	}
	r := inspect.Build(f, opts.Report)
	r.Path = path
	r.Size = m.Size()
	return r, nil
}

// Files parses paths with a bounded worker pool. Results are in input order.
// Paths not started before ctx is done report ctx.Err().
func Files(ctx context.Context, paths []string, opts Options) []Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(paths))

	results := make([]Result, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := File(paths[i], opts)
				results[i] = Result{Path: paths[i], Report: r, Err: err}
			}
		}()
	}

	next := 0
feed:
	for ; next < len(paths); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(paths); i++ {
		results[i] = Result{Path: paths[i], Err: ctx.Err()}
	}
	return results
}
