// Package swagger serves the OpenAPI document of the read API.
package swagger

import (
	"context"
	"fmt"
	"net/http"
)

const (
	// scriptRoute serves a bundle passed with WithScript.
	scriptRoute = "/api-docs/redoc.standalone.js"
	redocCDN    = "https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"
)

// Option configures Register.
type Option func(*options)

type options struct {
	script []byte
}

// WithScript serves js as the ReDoc standalone bundle so the docs page
// loads without network access. Without it the page uses the ReDoc CDN.
func WithScript(js []byte) Option {
	return func(o *options) {
		o.script = js
	}
}

// Register attaches the documentation routes to mux:
//
//	GET /openapi.yaml                   embedded OpenAPI document
//	GET /api-docs                       ReDoc page rendering it
//	GET /api-docs/redoc.standalone.js   local ReDoc bundle, with WithScript
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	src := redocCDN
	if len(o.script) > 0 {
		src = scriptRoute
		mux.HandleFunc(scriptRoute, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			_, _ = w.Write(o.script)
		})
	}
	page := []byte(fmt.Sprintf(indexHTML, src))

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>syaroho rating API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc spec-url="/openapi.yaml"></redoc>
    <script src="%s"></script>
  </body>
</html>`
