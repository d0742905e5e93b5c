package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
)

const notFoundBody = "404 - Not found"

type Server interface {
	http.Handler
}

type server struct {
	router   Router
	notFound http.HandlerFunc
}

func NewServer(routerDep Router) Server {
	s := &server{
		router: routerDep,
	}
	s.notFound = s.logRequest(s.logResponse(s.handleNotFound()))
	s.routes()
	return s
}

// ServeHTTP answers unclean paths (empty segments, dot segments) itself so
// the router never redirects them.
func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p := r.URL.EscapedPath(); p != path.Clean(p) {
		s.notFound(w, r)
		return
	}
	s.router.ServeHTTP(w, r)
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if _, err := io.WriteString(w, body); err != nil {
		log.WithError(err).Warn("unable to write response body")
	}
}

func (s *server) logRequest(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		headers, err := json.Marshal(r.Header)
		if err != nil {
			log.WithError(err).Error("unable to marshal request headers")
		}
		requestLogger := log.WithFields(log.Fields{
			"method":   r.Method,
			"url":      r.URL.String(),
			"protocol": r.Proto,
			"headers":  string(headers),
		})
		requestLogger.Debug("request received")

		h(w, r)
	}
}

type responseWrapper struct {
	http.ResponseWriter
	Status      int
	WroteHeader bool
	Body        []byte
	WriteCount  int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWrapper {
	return &responseWrapper{ResponseWriter: w, Status: http.StatusOK}
}

func (rw *responseWrapper) WriteHeader(code int) {
	if rw.WroteHeader {
		return
	}
	rw.Status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.WroteHeader = true
}

func (rw *responseWrapper) Write(body []byte) (int, error) {
	rw.WriteCount++
	rw.Body = append(rw.Body, body...)
	return rw.ResponseWriter.Write(body)
}

func (s *server) logResponse(h http.HandlerFunc) http.HandlerFunc {
	logger := log.WithFields(log.Fields{"func": "logResponse"})
	return func(w http.ResponseWriter, r *http.Request) {
		rw := wrapResponseWriter(w)
		h(rw, r)

		headers, err := json.Marshal(rw.Header())
		if err != nil {
			logger.WithError(err).Error("unable to marshal headers")
		}
		requestLogger := logger.WithFields(log.Fields{
			"status":      rw.Status,
			"headers":     string(headers),
			"body":        string(rw.Body),
			"write-count": rw.WriteCount,
		})
		requestLogger.Debug("response sent")
	}
}

// onlyGet sends every non-GET request to the not-found handler, so a known
// path with the wrong method is a 404 rather than a 405.
func (s *server) onlyGet(h http.HandlerFunc) http.HandlerFunc {
	notFound := s.handleNotFound()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			notFound(w, r)
			return
		}
		h(w, r)
	}
}

func (s *server) handleNotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusNotFound, notFoundBody)
	}
}

func (s *server) handleHello() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "Hello World!")
	}
}

func (s *server) handleQuery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.PathValue("query")
		// An escaped slash or dot segment decodes to something that is not
		// a single path segment.
		if strings.Contains(query, "/") || query == "." || query == ".." {
			writeText(w, http.StatusNotFound, notFoundBody)
			return
		}
		writeText(w, http.StatusOK, fmt.Sprintf("Backend received query: '%s'", query))
	}
}
