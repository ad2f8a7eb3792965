package server

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Metric endpoint labels.
const (
	endpointPage = "page"
	endpointAPI  = "api"
)

// renderForm is the POST / form body.
type renderForm struct {
	Text string `schema:"text"`
}

// apiResponse is the POST /api/render response body.
type apiResponse struct {
	HTML string `json:"html"`
}

// pageData feeds the page template.
type pageData struct {
	Raw      string
	Rendered template.HTML
	Style    template.CSS
	Version  string
}

// render runs the renderer and records metrics.
func (s *Server) render(endpoint, text string) string {
	start := time.Now()
	out := s.renderer.Render(text)
	s.metrics.ObserveRender(endpoint, len(text), time.Since(start))
	return out
}

// handlePage serves GET / with the sample document and no output, and
// POST / with the submitted text and its rendering.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Raw:     s.sample,
		Style:   s.style,
		Version: s.version,
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.bodyError(w, err)
			return
		}
		var form renderForm
		if err := s.decoder.Decode(&form, r.PostForm); err != nil {
			s.logger.WithError(err).Debug("decoding form")
			form = renderForm{}
		}
		data.Raw = form.Text
		// The pipeline output is sanitized, so it may be inserted unescaped.
		data.Rendered = template.HTML(s.render(endpointPage, form.Text)) // #nosec G203
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("executing page template")
	}
}

// handleAPI serves POST /api/render. A body that is not a JSON object, or
// whose "text" is missing or not a string, renders the empty string.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.bodyError(w, err)
		return
	}

	text := ""
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if v, ok := payload["text"].(string); ok {
			text = v
		}
	}

	writeJSON(w, http.StatusOK, apiResponse{HTML: s.render(endpointAPI, text)}, s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Infof("Failed Request: (%d:%s) for %s:'%s'",
		http.StatusNotFound, http.StatusText(http.StatusNotFound), r.Method, r.URL.String())
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// bodyError answers a failed body read: 413 past the size cap, 400 otherwise.
func (s *Server) bodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		return
	}
	s.logger.WithError(err).Debug("reading request body")
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

type errorLogger interface {
	Errorf(format string, args ...any)
}

func writeJSON(w http.ResponseWriter, code int, value any, log errorLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Errorf("unable to write json: %q", err)
	}
}
