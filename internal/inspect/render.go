package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// WriteJSON encodes r to w, indented when pretty is set.
func (r *Report) WriteJSON(w io.Writer, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(r)
}

// summaryKeys are printed ahead of the full metadata listing when present.
var summaryKeys = []string{
	"general.name",
	"general.architecture",
	"general.quantization_version",
	"general.file_type",
	"general.alignment",
	"tokenizer.ggml.model",
	"tokenizer.ggml.bos_token_id",
	"tokenizer.ggml.eos_token_id",
}

type TextOptions struct {
	// ShowKV prints every metadata entry.
	ShowKV bool
	// Tensors limits the tensor listing: 0 skips it, negative lists all.
	Tensors int
}

// WriteText prints a human-readable summary of r.
func (r *Report) WriteText(w io.Writer, opts TextOptions) error {
	p := &printer{w: w}
	if r.Path != "" {
		p.printf("File: %s (%s)\n", r.Path, FormatBytes(r.Size))
	}
	p.printf("GGUF v%d | tensors=%d | kv=%d | alignment=%d | data_offset=%d\n",
		r.Version, r.TensorCount, r.KVCount, r.Alignment, r.DataOffset)

	byKey := make(map[string]MetadataItem, len(r.Metadata))
	for _, m := range r.Metadata {
		byKey[m.Key] = m
	}
	for _, k := range summaryKeys {
		if m, ok := byKey[k]; ok {
			p.printf("  %-36s %s\n", k+":", formatItem(m))
		}
	}

	if len(r.DuplicateKeys) > 0 {
		p.printf("\nDuplicate keys (last value wins): %s\n", strings.Join(r.DuplicateKeys, ", "))
	}

	if opts.ShowKV {
		p.printf("\nAll metadata:\n")
		for _, m := range r.Metadata {
			p.printf("  %s = %s\n", m.Key, formatItem(m))
		}
	}

	n := opts.Tensors
	if n != 0 {
		p.printf("\nTensors:\n")
		count := len(r.Tensors)
		if n < 0 || n > count {
			n = count
		}
		for _, t := range r.Tensors[:n] {
			p.printf("  %-40s %-7s dims=%s off=%d\n", t.Name, t.Type, FormatDims(t.Dims), t.Offset)
		}
		if n < count {
			p.printf("  ... (%d more)\n", count-n)
		}
	}
	return p.err
}

// printer keeps the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func formatItem(m MetadataItem) string {
	if strings.HasPrefix(m.Type, "array") {
		return fmt.Sprintf("%s len=%d", m.Type, m.Length)
	}
	switch v := m.Value.(type) {
	case string:
		if len(v) > 80 {
			return fmt.Sprintf("%q... (%d bytes)", v[:80], len(v))
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func FormatDims(dims []uint64) string {
	if len(dims) == 0 {
		return "[]"
	}
	parts := make([]string, len(dims))
	for i, v := range dims {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, "x") + "]"
}

func FormatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
