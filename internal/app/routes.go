package app

import "net/http"

type Router interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// routes relies on ServeMux precedence: the literal /hello beats /{query},
// and / only catches what neither of them matched.
func (s *server) routes() {
	s.router.HandleFunc("/hello", s.logRequest(s.logResponse(s.onlyGet(s.handleHello()))))
	s.router.HandleFunc("/{query}", s.logRequest(s.logResponse(s.onlyGet(s.handleQuery()))))
	s.router.HandleFunc("/", s.notFound)
}
