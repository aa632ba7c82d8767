package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"plinko-pir/internal/pirerr"
)

var hexKeyPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	h := s.engine.Health()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         h.Status,
		DatabaseLoaded: h.DatabaseLoaded,
		DatabaseSize:   h.DatabaseSize,
		ChunkSize:      h.ChunkSize,
		SetSize:        h.SetSize,
	})
}

func (s *Server) handlePlaintext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req plaintextRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.engine.Plaintext(req.Index)
	if err != nil {
		// req.Index is deliberately excluded from the security event:
		// spec §4.E forbids logging the queried index even on rejection.
		s.handleEngineError(w, r, err, "rejected plaintext query")
		return
	}

	writeJSON(w, http.StatusOK, plaintextResponse{
		Value:           result.Value,
		ServerTimeNanos: result.Duration.Nanoseconds(),
	})
}

func (s *Server) handleFullSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req fullSetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if !hexKeyPattern.MatchString(req.PRFKey) {
		s.logSecurityEvent(r, "rejected fullset query: malformed prf_key")
		writeError(w, http.StatusBadRequest, "prf_key must be a 32-character lowercase hex string")
		return
	}

	keyBytes, err := hex.DecodeString(req.PRFKey)
	if err != nil {
		s.logSecurityEvent(r, "rejected fullset query: invalid hex")
		writeError(w, http.StatusBadRequest, "prf_key must be a 32-character lowercase hex string")
		return
	}

	result, err := s.engine.FullSet(keyBytes)
	if err != nil {
		// keyBytes/req.PRFKey are deliberately excluded from the log:
		// spec §6.4 forbids logging caller-supplied key material or its
		// hex encoding, even on a validation failure.
		s.handleEngineError(w, r, err, "rejected fullset query")
		return
	}

	writeJSON(w, http.StatusOK, fullSetResponse{
		Value:           result.Value,
		ServerTimeNanos: result.Duration.Nanoseconds(),
	})
}

func (s *Server) handleSetParity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req setParityRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.engine.SetParity(req.Indices)
	if err != nil {
		// req.Indices is deliberately excluded: spec §6.4 forbids
		// logging the index set from a setparity request.
		s.handleEngineError(w, r, err, "rejected setparity query")
		return
	}

	writeJSON(w, http.StatusOK, setParityResponse{
		Parity:          result.Value,
		ServerTimeNanos: result.Duration.Nanoseconds(),
	})
}

// decodeJSON parses the request body into dst, writing a 400 response
// and returning false on any failure (malformed JSON, wrong shape, or
// a body exceeding maxBodyBytes).
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if strings.Contains(err.Error(), "http: request body too large") {
			s.logSecurityEvent(r, "oversized request body")
			writeError(w, http.StatusBadRequest, "request body too large")
			return false
		}
		s.logSecurityEvent(r, "malformed request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleEngineError maps a pirerr.Error to the HTTP response spec §7
// requires: 400 for caller mistakes, 500 with a generic message for
// everything else (full detail goes to the server log only).
func (s *Server) handleEngineError(w http.ResponseWriter, r *http.Request, err error, securityCategory string) {
	var perr *pirerr.Error
	if errors.As(err, &perr) && perr.Kind == pirerr.KindBadRequest {
		s.logSecurityEvent(r, securityCategory)
		writeError(w, http.StatusBadRequest, perr.Message)
		return
	}

	s.log.Error().Err(err).Msg("internal error handling query")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) logSecurityEvent(r *http.Request, category string) {
	s.log.Warn().
		Str("event", sanitizeForLogging(category, 200)).
		Str("client_ip", sanitizeForLogging(clientIP(r), 64)).
		Msg("security event")
}

func clientIP(r *http.Request) string {
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
