// Package site serves the embedded dashboard shell and player photos.
package site

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/pokerleague/internal/app"
	"github.com/okian/pokerleague/pkg/logger"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

const photoCacheControl = "public, max-age=3600"

// Site serves the dashboard shell and the photo directory.
type Site struct {
	playersDir string
	files      http.Handler
	logger     logger.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithPlayersDir sets the directory holding <id>.png player photos.
func WithPlayersDir(dir string) Option {
	return func(s *Site) {
		s.playersDir = dir
	}
}

// New creates a Site with the embedded shell.
func New(opts ...Option) *Site {
	s := &Site{
		files:  http.FileServer(FS()),
		logger: logger.Get().Named("site"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches the dashboard shell and photo routes to r. The shell
// owns every path no other route claims.
func Register(_ context.Context, r chi.Router, opts ...Option) {
	if r == nil {
		panic("router is nil")
	}
	s := New(opts...)
	r.Get("/players/{file}", s.HandlePhoto)
	r.Handle("/*", s.files)
}

// HandlePhoto handles GET /players/{id}.png. Players without a photo on
// disk get the embedded placeholder.
func (s *Site) HandlePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	id, err := service.ValidPlayerID(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", photoCacheControl)
	if s.playersDir != "" {
		f, err := os.Open(filepath.Join(s.playersDir, id+".png"))
		switch {
		case err == nil:
			defer func() { _ = f.Close() }()
			if info, statErr := f.Stat(); statErr == nil && info.Mode().IsRegular() {
				w.Header().Set("Content-Type", "image/png")
				http.ServeContent(w, r, id+".png", info.ModTime(), f)
				return
			}
		case !errors.Is(err, os.ErrNotExist):
			s.logger.Warn(r.Context(), "player photo unreadable",
				logger.String("player_id", id),
				logger.Error(err))
		}
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeContent(w, r, "default.png", time.Time{}, bytes.NewReader(defaultPhoto))
}
