package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pokerleague/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSiteHandler(t *testing.T) {
	Convey("Given a site with a photo directory", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "J001.png"), []byte("photo-bytes"), 0o600), ShouldBeNil)

		r := chi.NewRouter()
		Register(context.Background(), r, WithPlayersDir(dir))

		Convey("Then the root serves the dashboard shell", func() {
			w := get(r, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "Liga de Poker")
			So(w.Body.String(), ShouldContainSubstring, "#/geral")
		})

		Convey("Then an unknown asset is not found", func() {
			So(get(r, "/missing.js").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a player photo on disk is served", func() {
			w := get(r, "/players/J001.png")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
			So(w.Body.String(), ShouldEqual, "photo-bytes")
		})

		Convey("Then a player without a photo gets the placeholder", func() {
			w := get(r, "/players/J999.png")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.Bytes(), ShouldResemble, defaultPhoto)
			So(w.Header().Get("Cache-Control"), ShouldEqual, photoCacheControl)
		})

		Convey("Then other extensions and malformed ids are not found", func() {
			So(get(r, "/players/J001.jpg").Code, ShouldEqual, http.StatusNotFound)
			So(get(r, "/players/J%20001.png").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a site without a photo directory", t, func() {
		r := chi.NewRouter()
		Register(context.Background(), r)

		Convey("Then every photo is the placeholder", func() {
			w := get(r, "/players/J001.png")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.Bytes(), ShouldResemble, defaultPhoto)
		})
	})
}

func TestEmbeddedPhoto(t *testing.T) {
	Convey("Given the embedded placeholder", t, func() {
		Convey("Then it is a PNG", func() {
			So(len(defaultPhoto), ShouldBeGreaterThan, 8)
			So(string(defaultPhoto[1:4]), ShouldEqual, "PNG")
		})
	})
}

func TestSiteWithNilRouter(t *testing.T) {
	Convey("Given a nil router", t, func() {
		Convey("Then registering panics", func() {
			So(func() { Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}
