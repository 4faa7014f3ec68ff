package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritestyle/pkg/cache"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/observability"
	"github.com/matzehuels/spritestyle/pkg/pipeline"
	"github.com/matzehuels/spritestyle/pkg/qa"
	"github.com/matzehuels/spritestyle/pkg/storage"
	"github.com/matzehuels/spritestyle/pkg/style"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	s := New(pipeline.NewRunner(fc, nil, logger), store, logger)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

// spritePNG draws a default-style sprite of the given class.
func spritePNG(t *testing.T, class string) []byte {
	t.Helper()
	opts := pipeline.Options{Class: class}
	if err := opts.ValidateForGenerate(); err != nil {
		t.Fatal(err)
	}
	buf, err := pipeline.Generate(style.Default(), opts)
	if err != nil {
		t.Fatal(err)
	}
	data, err := pipeline.Encode(buf, pipeline.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func do(t *testing.T, method, url, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectError(t *testing.T, resp *http.Response, status int, code errors.Code) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d", resp.StatusCode, status)
	}
	var body errorBody
	decode(t, resp, &body)
	if body.Error.Code != code {
		t.Errorf("code = %s, want %s (%s)", body.Error.Code, code, body.Error.Message)
	}
}

func analyze(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := do(t, http.MethodPost, ts.URL+"/v1/analyze", "image/png", bytes.NewReader(spritePNG(t, "warrior")))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("analyze status = %d", resp.StatusCode)
	}
	var out analyzeResponse
	decode(t, resp, &out)
	if err := errors.ValidateStyleID(out.ID); err != nil {
		t.Fatalf("analyze id: %v", err)
	}
	return out.ID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out healthResponse
	decode(t, resp, &out)
	if out.Status != "ok" || out.Build.Version == "" {
		t.Errorf("health = %+v", out)
	}
}

func TestAnalyzeAndGetStyle(t *testing.T) {
	ts := newTestServer(t)
	id := analyze(t, ts)

	resp := do(t, http.MethodGet, ts.URL+"/v1/styles/"+id, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get style status = %d", resp.StatusCode)
	}
	cfg, err := style.ReadJSON(resp.Body)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(cfg.Palette) == 0 {
		t.Error("analyzed style should carry palettes")
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/styles/"+id+"?format=dot", "", nil)
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "digraph Style") {
		t.Errorf("dot body = %s", body)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/styles/"+id+"?format=xml", "", nil)
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidFormat)
}

func TestAnalyzeMultipart(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, class := range []string{"warrior", "rogue"} {
		fw, err := mw.CreateFormFile(ReferenceField, class+".png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(spritePNG(t, class)); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	resp := do(t, http.MethodPost, ts.URL+"/v1/analyze?merge=majority", mw.FormDataContentType(), &body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		url    string
		body   string
		status int
		code   errors.Code
	}{
		{"garbage", "/v1/analyze", "not an image", http.StatusBadRequest, errors.ErrCodeInvalidImage},
		{"empty", "/v1/analyze", "", http.StatusBadRequest, errors.ErrCodeInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+tt.url, "image/png", strings.NewReader(tt.body))
			expectError(t, resp, tt.status, tt.code)
		})
	}

	png := spritePNG(t, "warrior")
	resp := do(t, http.MethodPost, ts.URL+"/v1/analyze?merge=average", "image/png", bytes.NewReader(png))
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidInput)
	resp = do(t, http.MethodPost, ts.URL+"/v1/analyze?max_colors=lots", "image/png", bytes.NewReader(png))
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidInput)
}

func TestStyleLookupErrors(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/v1/styles/not-a-uuid", "", nil)
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidInput)

	resp = do(t, http.MethodGet, ts.URL+"/v1/styles/"+storage.NewID(), "", nil)
	expectError(t, resp, http.StatusNotFound, errors.ErrCodeStyleNotFound)
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)
	id := analyze(t, ts)
	url := ts.URL + "/v1/styles/" + id + "/generate"

	for _, want := range []string{"miss", "hit"} {
		resp := do(t, http.MethodPost, url, "application/json", strings.NewReader(`{"class":"mage","seed":3}`))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q", ct)
		}
		if got := resp.Header.Get("X-Cache"); got != want {
			t.Errorf("X-Cache = %q, want %q", got, want)
		}
	}

	// Empty body uses defaults.
	resp := do(t, http.MethodPost, url, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("empty body status = %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, url, "application/json", strings.NewReader(`{"class":"knight"}`))
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidInput)

	resp = do(t, http.MethodPost, url, "application/json", strings.NewReader(`{"klass":"mage"}`))
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidInput)

	resp = do(t, http.MethodPost, url, "application/json", strings.NewReader(`{"format":"webp"}`))
	if ct := resp.Header.Get("Content-Type"); ct != "image/webp" {
		t.Errorf("webp Content-Type = %q", ct)
	}
}

func TestGenerateWithStoredPalettes(t *testing.T) {
	ts := newTestServer(t)
	id := analyze(t, ts)

	resp := do(t, http.MethodPut, ts.URL+"/v1/palettes/cloth", "application/json", strings.NewReader(`{"colors":["#224466"]}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	for range 2 {
		resp = do(t, http.MethodPost, ts.URL+"/v1/styles/"+id+"/generate?palettes=stored", "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if got := resp.Header.Get("X-Cache"); got != "miss" {
			t.Errorf("stored palettes should bypass the cache, X-Cache = %q", got)
		}
	}
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)
	id := analyze(t, ts)

	resp := do(t, http.MethodPost, ts.URL+"/v1/styles/"+id+"/validate", "image/png", bytes.NewReader(spritePNG(t, "warrior")))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rep qa.Report
	decode(t, resp, &rep)
	if rep.ID == "" || rep.Issues == nil {
		t.Errorf("report = %+v", rep)
	}

	resp = do(t, http.MethodPost, ts.URL+"/v1/styles/"+id+"/validate", "image/png", strings.NewReader("nope"))
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidImage)
}

func TestPalettes(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/v1/palettes", "", nil)
	var list paletteListResponse
	decode(t, resp, &list)
	if len(list.Builtin) == 0 || len(list.Stored) != 0 {
		t.Errorf("list = %+v", list)
	}

	resp = do(t, http.MethodPut, ts.URL+"/v1/palettes/knight-steel", "application/json", strings.NewReader(`{"colors":["#112233","#445566"]}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/palettes/knight-steel", "", nil)
	var got paletteResponse
	decode(t, resp, &got)
	if got.Source != "stored" || len(got.Colors) != 2 || got.Colors[0] != 0x112233 {
		t.Errorf("stored palette = %+v", got)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/palettes/skin", "", nil)
	decode(t, resp, &got)
	if got.Source != "builtin" || len(got.Colors) == 0 {
		t.Errorf("builtin palette = %+v", got)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/palettes/missing", "", nil)
	expectError(t, resp, http.StatusNotFound, errors.ErrCodePaletteNotFound)

	resp = do(t, http.MethodPut, ts.URL+"/v1/palettes/empty", "application/json", strings.NewReader(`{"colors":[]}`))
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidPalette)

	resp = do(t, http.MethodPut, ts.URL+"/v1/palettes/Bad", "application/json", strings.NewReader(`{"colors":["#000000"]}`))
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidPalette)

	resp = do(t, http.MethodGet, ts.URL+"/v1/palettes", "", nil)
	decode(t, resp, &list)
	if len(list.Stored) != 1 || list.Stored[0] != "knight-steel" {
		t.Errorf("stored = %v", list.Stored)
	}
}

func TestNoStore(t *testing.T) {
	ts := httptest.NewServer(New(nil, nil, nil).Routes())
	defer ts.Close()

	resp := do(t, http.MethodPost, ts.URL+"/v1/analyze", "image/png", bytes.NewReader(spritePNG(t, "warrior")))
	expectError(t, resp, http.StatusNotImplemented, errors.ErrCodeUnsupported)

	resp = do(t, http.MethodGet, ts.URL+"/v1/palettes", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("palettes without store status = %d", resp.StatusCode)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	errs   int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, _ int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func (h *recordingHTTPHooks) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs++
}

func TestHTTPHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)

	ts := newTestServer(t)
	do(t, http.MethodGet, ts.URL+"/v1/palettes/missing", "", nil)

	// The hook runs after the response is written; close the server so the
	// handler has returned before reading.
	ts.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 1 || hooks.routes[0] != "GET /v1/palettes/{name}" {
		t.Errorf("routes = %v", hooks.routes)
	}
	if hooks.errs != 1 {
		t.Errorf("errors = %d, want 1", hooks.errs)
	}
}
