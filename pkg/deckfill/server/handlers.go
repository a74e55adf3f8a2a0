package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill"
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/pptx"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Response headers set by the fill endpoint
const (
	HeaderWarnings   = "X-Deckfill-Warnings"
	HeaderRunID      = "X-Deckfill-Run-Id"
	HeaderTemplateID = "X-Deckfill-Template-Id"
)

// handleFill fills an uploaded template.
//
// Form fields: template (file) or template_id, context (file or text field),
// context_format (json|yaml), strict, delimiter.
func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseRequest(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	engine, err := s.engineFor(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, report, err := engine.FillBytes(r.Context(), req.template, req.data)
	if report != nil {
		w.Header().Set(HeaderRunID, report.RunID)
	}
	if err != nil {
		s.fillError(w, err)
		return
	}

	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="filled.pptx"`)
	w.Header().Set(HeaderWarnings, strconv.Itoa(len(report.Warnings)))
	w.Header().Set(HeaderTemplateID, req.templateID)
	w.Write(out)
}

// handleInspect lists the placeholders of an uploaded template and, when a
// context is given, the keys it lacks.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseRequest(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	engine, err := s.engineFor(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	pres, err := pptx.OpenBytes(req.template)
	if err != nil {
		jsonError(w, "invalid template: "+err.Error(), http.StatusBadRequest)
		return
	}

	inv := engine.Inspect(pres, req.data)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderTemplateID, req.templateID)
	json.NewEncoder(w).Encode(map[string]any{
		"template_id": req.templateID,
		"inventory":   inv,
	})
}

type fillRequest struct {
	template   []byte
	templateID string
	data       deckfill.Context
}

// parseRequest reads the template and context of a multipart request. It
// writes the error response itself and reports whether to continue.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (*fillRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	req := &fillRequest{}
	if err := s.readTemplate(r, req); err != nil {
		r.MultipartForm.RemoveAll()
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	data, err := readContext(r)
	if err != nil {
		r.MultipartForm.RemoveAll()
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	req.data = data
	return req, true
}

// readTemplate takes the uploaded template or looks up a previously uploaded one
func (s *Server) readTemplate(r *http.Request, req *fillRequest) error {
	file, _, err := r.FormFile("template")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			return fmt.Errorf("failed to read template")
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			return fmt.Errorf("template exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
		}
		sum := sha256.Sum256(data)
		req.template = data
		req.templateID = hex.EncodeToString(sum[:])
		if s.cache != nil {
			s.cache.Set(req.templateID, data)
		}
		return nil
	}

	id := r.FormValue("template_id")
	if id == "" {
		return fmt.Errorf("template is required")
	}
	if s.cache == nil {
		return fmt.Errorf("template_id is not supported: template cache is disabled")
	}
	data, ok := s.cache.Get(id)
	if !ok {
		return fmt.Errorf("unknown template_id %q", id)
	}
	req.template = data
	req.templateID = id
	return nil
}

// readContext decodes the context from a file part or a text field
func readContext(r *http.Request) (deckfill.Context, error) {
	format := deckfill.ContextFormat(strings.ToLower(r.FormValue("context_format")))

	var src io.Reader
	if file, header, err := r.FormFile("context"); err == nil {
		defer file.Close()
		if format == "" {
			format = deckfill.FormatFromPath(filepath.Base(header.Filename))
		}
		src = file
	} else if text := r.FormValue("context"); text != "" {
		src = strings.NewReader(text)
	} else {
		return nil, nil
	}
	if format == "" {
		format = deckfill.FormatJSON
	}

	data, err := deckfill.LoadContext(src, format)
	if err != nil {
		return nil, fmt.Errorf("invalid context: %v", err)
	}
	return data, nil
}

// engineFor builds an engine from the server configuration and request overrides
func (s *Server) engineFor(r *http.Request) (*deckfill.Engine, error) {
	cfg := *s.cfg.Base
	if v := r.FormValue("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid strict value %q", v)
		}
		cfg.StrictMode = strict
	}
	if v := r.FormValue("delimiter"); v != "" {
		cfg.Delimiter = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return deckfill.New(deckfill.Options{
		Delimiter:   cfg.Delimiter,
		StrictMode:  cfg.StrictMode,
		Workers:     cfg.Workers,
		Logger:      s.log.With(zap.String("request_id", middleware.GetReqID(r.Context()))),
		ImageLoader: s.cfg.ImageLoader,
	})
}

func (s *Server) fillError(w http.ResponseWriter, err error) {
	var fe *deckfill.FillError
	switch {
	case errors.As(err, &fe):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error": fe.Error(),
			"kind":  fe.Kind.String(),
			"slide": fe.Slide,
			"shape": fe.Shape,
			"key":   fe.Key,
		})
	case errors.Is(err, pptx.ErrNotPresentation):
		jsonError(w, "invalid template: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		s.log.Error("fill failed", zap.Error(err))
		jsonError(w, "fill failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// dataURIOnly loads images from data URIs and raw bytes only
type dataURIOnly struct{}

func (dataURIOnly) LoadImage(ctx context.Context, src any) (deck.Image, error) {
	if s, ok := src.(string); ok && !strings.HasPrefix(s, "data:") {
		return deck.Image{}, fmt.Errorf("%w: only data URIs are accepted", deckfill.ErrUnsupportedImageSource)
	}
	return deckfill.DefaultImageLoader.LoadImage(ctx, src)
}
