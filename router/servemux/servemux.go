package servemux

import (
	"net/http"

	"github.com/tidings-app/tidings/router"
)

// ServeMuxRouter implements router.Router using net/http ServeMux.
// Go 1.22 patterns support "METHOD /path" natively.
type ServeMuxRouter struct {
	*http.ServeMux
}

func New() router.Router {
	return &ServeMuxRouter{ServeMux: http.NewServeMux()}
}

func (s *ServeMuxRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.ServeMux.ServeHTTP(w, r)
}

func (s *ServeMuxRouter) Handle(pattern string, handler http.Handler) {
	s.ServeMux.Handle(pattern, handler)
}

func (s *ServeMuxRouter) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.ServeMux.HandleFunc(pattern, handler)
}
