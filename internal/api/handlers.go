package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/spritestyle/pkg/buildinfo"
	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/generate"
	spriteio "github.com/matzehuels/spritestyle/pkg/io"
	"github.com/matzehuels/spritestyle/pkg/pipeline"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/report"
	"github.com/matzehuels/spritestyle/pkg/storage"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// ReferenceField is the multipart field holding reference images.
const ReferenceField = "reference"

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type analyzeResponse struct {
	ID     string        `json:"id"`
	Style  *style.Config `json:"style"`
	Cached bool          `json:"cached"`
}

type paletteListResponse struct {
	Builtin []string `json:"builtin"`
	Stored  []string `json:"stored"`
}

type paletteResponse struct {
	Name   string             `json:"name"`
	Colors colorspace.Palette `json:"colors"`
	Source string             `json:"source"`
}

type paletteRequest struct {
	Colors colorspace.Palette `json:"colors"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	store, err := s.store()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	refs, err := s.readReferences(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{Merge: q.Get("merge")}
	if opts.MaxColors, err = intParam(q.Get("max_colors")); err != nil {
		s.writeError(w, r, err)
		return
	}

	cfg, hit, err := s.Runner.AnalyzeWithCacheInfo(r.Context(), refs, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := storage.NewID()
	if err := store.PutStyle(r.Context(), id, cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Logger.Info("stored style", "id", id, "references", len(refs), "cached", hit)
	writeJSON(w, http.StatusCreated, analyzeResponse{ID: id, Style: cfg, Cached: hit})
}

func (s *Server) handleGetStyle(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.loadStyle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, cfg)
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = io.WriteString(w, report.ToDOT(cfg, report.Options{Detailed: true}))
	case "svg":
		svg, err := report.RenderSVG(r.Context(), report.ToDOT(cfg, report.Options{Detailed: true}))
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render style graph"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg)", format))
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.loadStyle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var opts pipeline.Options
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options"))
		return
	}
	if err := opts.ValidateForGenerate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("palettes") == "stored" {
		if opts.Palettes, err = s.storedPalettes(r); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	_, data, hit, err := s.Runner.GenerateWithCacheInfo(r.Context(), cfg, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/"+opts.Format)
	w.Header().Set("X-Cache", cacheHeader(hit))
	_, _ = w.Write(data)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.loadStyle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sprite, _, err := spriteio.DecodeImage(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Item:     q.Get("item"),
		Textures: q.Get("textured") == "true",
		Width:    sprite.Width,
		Height:   sprite.Height,
	}
	if opts.ValidateColors, err = intParam(q.Get("max_colors")); err != nil {
		s.writeError(w, r, err)
		return
	}

	rep, hit, err := s.Runner.ValidateWithCacheInfo(r.Context(), sprite, cfg, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListPalettes(w http.ResponseWriter, r *http.Request) {
	resp := paletteListResponse{
		Builtin: generate.NewPaletteManager().Names(),
		Stored:  []string{},
	}
	if s.Store != nil {
		names, err := s.Store.ListPalettes(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Stored = append(resp.Stored, names...)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPalette(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidatePaletteName(name); err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.Store != nil {
		p, err := s.Store.GetPalette(r.Context(), name)
		if err == nil {
			writeJSON(w, http.StatusOK, paletteResponse{Name: name, Colors: p, Source: "stored"})
			return
		}
		if !errors.Is(err, errors.ErrCodePaletteNotFound) {
			s.writeError(w, r, err)
			return
		}
	}
	if p, ok := generate.NewPaletteManager().Get(name); ok {
		writeJSON(w, http.StatusOK, paletteResponse{Name: name, Colors: p, Source: "builtin"})
		return
	}
	s.writeError(w, r, errors.New(errors.ErrCodePaletteNotFound, "palette %q not found", name))
}

func (s *Server) handlePutPalette(w http.ResponseWriter, r *http.Request) {
	store, err := s.store()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	var req paletteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidPalette, err, "decode palette"))
		return
	}
	// Set applies the name and emptiness rules before anything is stored.
	if err := generate.NewPaletteManager().Set(name, req.Colors); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := store.SetPalette(r.Context(), name, req.Colors); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paletteResponse{Name: name, Colors: req.Colors, Source: "stored"})
}

func (s *Server) store() (storage.Store, error) {
	if s.Store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no style store configured")
	}
	return s.Store, nil
}

func (s *Server) loadStyle(r *http.Request) (*style.Config, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	id := chi.URLParam(r, "id")
	if err := errors.ValidateStyleID(id); err != nil {
		return nil, err
	}
	return store.GetStyle(r.Context(), id)
}

// storedPalettes returns the built-in palettes overlaid with every stored
// palette.
func (s *Server) storedPalettes(r *http.Request) (*generate.PaletteManager, error) {
	pm := generate.NewPaletteManager()
	names, err := s.Store.ListPalettes(r.Context())
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := pm.Load(r.Context(), s.Store, name); err != nil {
			return nil, err
		}
	}
	return pm, nil
}

// readReferences decodes a raw image body or every reference file of a
// multipart form.
func (s *Server) readReferences(r *http.Request) ([]*pixel.Buffer, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		buf, _, err := spriteio.DecodeImage(r.Body)
		if err != nil {
			return nil, err
		}
		return []*pixel.Buffer{buf}, nil
	}

	if err := r.ParseMultipartForm(s.MaxUpload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse form")
	}
	files := r.MultipartForm.File[ReferenceField]
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no %q files in form", ReferenceField)
	}
	refs := make([]*pixel.Buffer, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", fh.Filename)
		}
		buf, _, err := spriteio.DecodeImage(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode %s", fh.Filename)
		}
		refs = append(refs, buf)
	}
	return refs, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid integer %q", v)
	}
	return n, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
