package http

import (
	"embed"
	"net/http"
)

//go:embed views/*.html
var views embed.FS

// serveView writes one of the static pages. Pages only talk to the JSON
// endpoints; nothing is rendered server side.
func serveView(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := views.ReadFile("views/" + name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}
}
