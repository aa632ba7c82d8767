// Package httpapi is the HTTP/JSON transport glue specified only at
// its boundary (spec §4.F, §6.2): it parses JSON, invokes the query
// engine, and formats responses. No PIR algorithm lives here.
package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"plinko-pir/internal/query"
)

// maxBodyBytes bounds request bodies at 1 MiB; oversized bodies are a
// logged security event per spec §6.4, not silently truncated.
const maxBodyBytes = 1 << 20

// Server wires the query engine to HTTP handlers.
type Server struct {
	engine *query.Engine
	log    zerolog.Logger
}

// New builds a Server bound to engine, logging through log.
func New(engine *query.Engine, log zerolog.Logger) *Server {
	return &Server{engine: engine, log: log}
}

// Routes returns the complete handler, including CORS and security
// headers on every response (spec §6.2).
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.wrap(s.handleHealth))
	mux.HandleFunc("/query/plaintext", s.wrap(s.handlePlaintext))
	mux.HandleFunc("/query/fullset", s.wrap(s.handleFullSet))
	mux.HandleFunc("/query/setparity", s.wrap(s.handleSetParity))
	return mux
}

// wrap applies CORS, security headers, and the body-size limit around
// a handler, mirroring the teacher's corsMiddleware shape
// (plinko-pir-server/server.go) extended with the security headers
// and body cap spec §6.2/§6.4 ask for.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		setSecurityHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next(w, r)
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	h.Set("Access-Control-Max-Age", "86400")
}

func setSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
}
