package router

import "net/http"

// Router registers handlers under "METHOD /path" patterns and serves them.
// Two implementations exist: julienschmidt/httprouter (default) and the
// standard library ServeMux.
type Router interface {
	http.Handler

	// Handle registers a handler for a "METHOD /path" pattern.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for a "METHOD /path" pattern.
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}
