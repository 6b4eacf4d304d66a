// Package web serves the browser app next to the RPC API.
package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// apiPrefix is the path prefix of every Connect procedure.
const apiPrefix = "/splitt.v1."

// Static serves the files in dir. Paths that name no file get dir/index.html,
// so bill links like /bill?id=... load the app. API paths that reach this
// handler are unknown procedures and get 404.
func Static(dir string) http.Handler {
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			http.NotFound(w, r)
			return
		}

		name := path.Clean("/" + r.URL.Path)
		if name == "/" {
			http.ServeFile(w, r, index)
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(name))
		if info, err := os.Stat(file); err != nil || info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}
		http.ServeFile(w, r, file)
	})
}
