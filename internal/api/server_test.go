package api

import (
	"bytes"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/ggufscope/internal/inspect"
	"github.com/samcharles93/ggufscope/pkg/gguf"
)

// sampleFile encodes a v3 container with one string key, one u32 key
// and a single tensor.
func sampleFile() []byte {
	var b []byte
	u32 := func(x uint32) { b = binary.LittleEndian.AppendUint32(b, x) }
	u64 := func(x uint64) { b = binary.LittleEndian.AppendUint64(b, x) }
	str := func(s string) { u64(uint64(len(s))); b = append(b, s...) }

	b = append(b, "GGUF"...)
	u32(3)
	u64(1)
	u64(2)

	str("general.architecture")
	u32(uint32(gguf.KindString))
	str("llama")
	str("answer")
	u32(uint32(gguf.KindUint32))
	u32(42)

	str("output.weight")
	u32(2)
	u64(16)
	u64(8)
	u32(uint32(gguf.GGMLTypeF32))
	u64(0)
	return b
}

func newTestEcho(t *testing.T, cfg Config) *echo.Echo {
	t.Helper()
	e := echo.New()
	NewServer(cfg).Register(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEOctetStream)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

func TestInspectGetDeleteReportLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, Config{})
	rec := do(t, e, http.MethodPost, "/v1/inspect", sampleFile())
	if rec.Code != http.StatusOK {
		t.Fatalf("inspect status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatalf("missing %s header", echo.HeaderXRequestID)
	}

	var created inspect.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !strings.HasPrefix(created.ID, "rpt_") {
		t.Fatalf("unexpected report id %q", created.ID)
	}
	if created.Version != 3 || created.KVCount != 2 || created.TensorCount != 1 {
		t.Fatalf("unexpected header: %+v", created)
	}
	if len(created.Tensors) != 1 || created.Tensors[0].Name != "output.weight" {
		t.Fatalf("unexpected tensors: %+v", created.Tensors)
	}

	getRec := do(t, e, http.MethodGet, "/v1/reports/"+created.ID, nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}

	delRec := do(t, e, http.MethodDelete, "/v1/reports/"+created.ID, nil)
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", delRec.Code, delRec.Body.String())
	}

	missing := do(t, e, http.MethodGet, "/v1/reports/"+created.ID, nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", missing.Code)
	}
}

func TestInspectRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, Config{})
	data := sampleFile()
	data[0] = 'X'
	rec := do(t, e, http.MethodPost, "/v1/inspect", data)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if env.Error.Type != "bad_magic" || env.Error.Stage != "magic" {
		t.Fatalf("unexpected error body: %+v", env.Error)
	}
	if env.Error.Index != nil {
		t.Fatalf("header errors carry no index, got %d", *env.Error.Index)
	}
}

func TestInspectReportsFailingMetadataEntry(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, Config{})
	data := sampleFile()
	// Cut inside the second metadata value.
	cut := bytes.Index(data, []byte("answer")) + len("answer") + 4 + 2
	rec := do(t, e, http.MethodPost, "/v1/inspect", data[:cut])
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if env.Error.Type != "out_of_bounds" || env.Error.Stage != "metadata" {
		t.Fatalf("unexpected error body: %+v", env.Error)
	}
	if env.Error.Index == nil || *env.Error.Index != 1 || env.Error.Key != "answer" {
		t.Fatalf("unexpected entry location: %+v", env.Error)
	}
}

func TestInspectEnforcesUploadLimit(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, Config{MaxUploadBytes: 16})
	rec := do(t, e, http.MethodPost, "/v1/inspect", sampleFile())
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestInspectRejectsBadArrayLimit(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, Config{})
	for _, q := range []string{"lots", "-1"} {
		rec := do(t, e, http.MethodPost, "/v1/inspect?array_limit="+q, sampleFile())
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("array_limit=%s status: got %d body=%s", q, rec.Code, rec.Body.String())
		}
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "req-123" {
		t.Fatalf("request id: got %q", got)
	}
}

func TestFilesEndpoints(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiny.gguf"), sampleFile(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.gguf"), []byte("GGUF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := newTestEcho(t, Config{ModelsDir: dir})

	list := do(t, e, http.MethodGet, "/v1/files", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list status: got %d body=%s", list.Code, list.Body.String())
	}
	var listed struct {
		Data []fileEntry `json:"data"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Data) != 2 || listed.Data[0].Name != "broken.gguf" || listed.Data[1].Name != "tiny.gguf" {
		t.Fatalf("unexpected listing: %+v", listed.Data)
	}

	ok := do(t, e, http.MethodGet, "/v1/files/tiny.gguf", nil)
	if ok.Code != http.StatusOK {
		t.Fatalf("inspect file status: got %d body=%s", ok.Code, ok.Body.String())
	}
	var r inspect.Report
	if err := json.Unmarshal(ok.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if r.Path != "tiny.gguf" || r.Size != int64(len(sampleFile())) {
		t.Fatalf("unexpected report: path=%q size=%d", r.Path, r.Size)
	}

	broken := do(t, e, http.MethodGet, "/v1/files/broken.gguf", nil)
	if broken.Code != http.StatusUnprocessableEntity {
		t.Fatalf("broken file status: got %d", broken.Code)
	}

	missing := do(t, e, http.MethodGet, "/v1/files/absent.gguf", nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing file status: got %d", missing.Code)
	}

	bad := do(t, e, http.MethodGet, "/v1/files/notes.txt", nil)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("non-gguf name status: got %d", bad.Code)
	}
}

func TestFilesWithoutModelsDir(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, Config{})
	rec := do(t, e, http.MethodGet, "/v1/files", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rec.Code)
	}
}
