package server

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tracegantt/pkg/buildinfo"
	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/render/styles"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// renderOptions merges query parameters, the theme cookie and the server
// defaults.
func (s *Server) renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = []string{format}
	q := r.URL.Query()

	opts.Theme = themeOf(r, s.defaults.Theme)
	if v := q.Get("viz"); v != "" {
		opts.VizType = v
	}
	if v := q.Get("width"); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil || w <= 0 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "invalid width %q", v)
		}
		opts.Width = w
	}
	if v := q.Get("ticks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "invalid ticks %q", v)
		}
		opts.TickCount = n
	}
	if q.Get("tooltips") == "false" {
		opts.NoTooltips = true
	}
	if q.Get("refresh") == "true" {
		opts.Refresh = true
	}
	return opts, nil
}

func themeOf(r *http.Request, fallback string) string {
	if v := r.URL.Query().Get("theme"); v != "" {
		return v
	}
	if c, err := r.Cookie(ThemeCookie); err == nil {
		if _, err := styles.ByName(c.Value); err == nil {
			return c.Value
		}
	}
	return fallback
}

func (s *Server) handleRenderTree(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts, err := s.renderOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	root, err := trace.Decode(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if root == nil {
		s.writeError(w, r, errs.InvalidTrace("request body holds no span tree"))
		return
	}

	ctx := r.Context()
	l, err := s.runner.GenerateLayout(ctx, root, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := s.runner.Render(ctx, l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, artifacts[format])
}

func (s *Server) handleRenderTrace(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts, err := s.renderOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.renderTrace(r, chi.URLParam(r, "traceID"), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, data)
}

func (s *Server) renderTrace(r *http.Request, traceID string, opts pipeline.Options) ([]byte, error) {
	if s.src == nil {
		return nil, errs.New(errs.ErrCodeUnsupported, "no trace source configured")
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	opts.Source = s.src
	opts.TraceID = traceID
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		return nil, err
	}
	return res.Artifacts[opts.Formats[0]], nil
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	theme := r.FormValue("theme")
	if _, err := styles.ByName(theme); err != nil || theme == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidTheme, "unknown theme %q", theme))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

// redirectTarget returns the local return_to path, the same-host Referer,
// or "/".
func redirectTarget(r *http.Request) string {
	if ref := r.FormValue("return_to"); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Host == "" && len(u.Path) > 0 && u.Path[0] == '/' {
			return u.RequestURI()
		}
	}
	if u, err := url.Parse(r.Referer()); err == nil && u.Host == r.Host && u.Path != "" {
		return u.RequestURI()
	}
	return "/"
}

var pageTmpl = template.Must(template.New("trace").Parse(`<!DOCTYPE html>
<html lang="en" data-theme="{{.Theme}}">
<head>
<meta charset="utf-8">
<title>Trace {{.TraceID}}</title>
<style>
body { font-family: sans-serif; margin: 1rem; }
html[data-theme="dark"] body { background: #1e1e1e; color: #ddd; }
html[data-theme="dark"] a { color: #8ab4f8; }
header { display: flex; gap: 1rem; align-items: center; }
</style>
</head>
<body>
<header>
<a class="back-to-search-traces" href="{{.SearchPage}}">&larr; Back to search</a>
<h1>Trace {{.TraceID}}</h1>
<form method="post" action="/theme">
<input type="hidden" name="return_to" value="{{.Self}}">
<input type="hidden" name="theme" value="{{.OtherTheme}}">
<button type="submit">{{.OtherTheme}} theme</button>
</form>
</header>
<div id="timeline-container">{{.Chart}}</div>
</body>
</html>
`))

type pageData struct {
	TraceID    string
	Theme      string
	OtherTheme string
	SearchPage string
	Self       string
	Chart      template.HTML
}

func (s *Server) handleTracePage(w http.ResponseWriter, r *http.Request) {
	traceID := r.URL.Query().Get("trace_id")
	if traceID == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidTraceID, "trace_id is required"))
		return
	}
	opts, err := s.renderOptions(r, pipeline.FormatSVG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.VizType = pipeline.VizTimeline
	svg, err := s.renderTrace(r, traceID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	theme := opts.Theme
	if theme == "" {
		theme = styles.ThemeLight
	}
	other := styles.ThemeDark
	if theme == styles.ThemeDark {
		other = styles.ThemeLight
	}
	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, pageData{
		TraceID:    traceID,
		Theme:      theme,
		OtherTheme: other,
		SearchPage: s.searchPage,
		Self:       r.URL.RequestURI(),
		Chart:      template.HTML(svg),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

