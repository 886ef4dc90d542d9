package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// defaultPhoto is served for players without a photo on disk.
//
//go:embed static/players/default.png
var defaultPhoto []byte

// FS returns an http.FileSystem for the embedded dashboard shell.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Expose the raw FS; the "static" root always exists when built.
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
