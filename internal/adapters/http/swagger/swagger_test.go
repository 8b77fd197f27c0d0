package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		convey.Convey("Then it should handle /openapi.yaml route", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
			convey.So(w.Body.Bytes(), convey.ShouldResemble, OpenAPI)
		})

		convey.Convey("And it should handle /api-docs route", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `spec-url="/openapi.yaml"`)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `src="`+redocCDN+`"`)
		})

		convey.Convey("And no local bundle is served", func() {
			req := httptest.NewRequest(http.MethodGet, scriptRoute, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})

	convey.Convey("Given a local ReDoc bundle", t, func() {
		js := []byte("var Redoc = {};")
		mux := http.NewServeMux()
		Register(context.Background(), mux, WithScript(js))

		convey.Convey("Then the page loads it from the server", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `src="/api-docs/redoc.standalone.js"`)
			convey.So(w.Body.String(), convey.ShouldNotContainSubstring, "cdn.redoc.ly")
		})

		convey.Convey("And it serves the bundle", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs/redoc.standalone.js", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/javascript; charset=utf-8")
			convey.So(w.Body.Bytes(), convey.ShouldResemble, js)
		})
	})

	convey.Convey("Given a nil mux", t, func() {
		convey.So(func() { Register(context.Background(), nil) }, convey.ShouldPanic)
	})
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded document", t, func() {
		var doc struct {
			OpenAPI string                    `yaml:"openapi"`
			Paths   map[string]map[string]any `yaml:"paths"`
		}
		convey.So(yaml.Unmarshal(OpenAPI, &doc), convey.ShouldBeNil)

		convey.Convey("Then it lists every read route", func() {
			paths := make([]string, 0, len(doc.Paths))
			for p, ops := range doc.Paths {
				paths = append(paths, p)
				convey.So(ops, convey.ShouldContainKey, "get")
			}
			sort.Strings(paths)
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			convey.So(paths, convey.ShouldResemble, []string{
				"/healthz", "/leaderboard", "/metrics", "/players/{handle}", "/results/{date}", "/stats",
			})
		})
	})
}
