// Package site serves the embedded browser form client.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Prefix is where the form client is mounted.
const Prefix = "/ui"

// Register attaches the form client under /ui/ to r.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	files := http.StripPrefix(Prefix+"/", http.FileServer(http.FS(FS())))
	r.Get(Prefix, http.RedirectHandler(Prefix+"/", http.StatusMovedPermanently).ServeHTTP)
	r.Get(Prefix+"/*", files.ServeHTTP)
}
