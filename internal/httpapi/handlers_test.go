package httpapi

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plinko-pir/internal/database"
	"plinko-pir/internal/query"
)

func newTestServer(t *testing.T, logBuf *bytes.Buffer, values ...uint64) *Server {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "database.bin")
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint64(buf[i*8:], v)
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	db, err := database.Load(path, time.Second, zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)

	engine := query.New(db)
	log := zerolog.New(logBuf)
	return New(engine, log)
}

func TestHealthEndpointReturnsDatabaseStatus(t *testing.T) {
	var logBuf bytes.Buffer
	srv := newTestServer(t, &logBuf, 1, 2, 3)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.DatabaseLoaded)
	assert.EqualValues(t, 3, body.DatabaseSize)
}

func TestPlaintextEndpointSuccess(t *testing.T) {
	var logBuf bytes.Buffer
	srv := newTestServer(t, &logBuf, 10, 20, 30)

	body, _ := json.Marshal(plaintextRequest{Index: 2})
	req := httptest.NewRequest(http.MethodPost, "/query/plaintext", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp plaintextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 30, resp.Value)
}

func TestPlaintextEndpointRejectsOutOfRangeIndex(t *testing.T) {
	var logBuf bytes.Buffer
	srv := newTestServer(t, &logBuf, 10, 20, 30)

	body, _ := json.Marshal(plaintextRequest{Index: 99})
	req := httptest.NewRequest(http.MethodPost, "/query/plaintext", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)

	assert.NotContains(t, logBuf.String(), "99", "log must never contain the queried index")
}

func TestSetParityEndpointRejectsEmptyIndices(t *testing.T) {
	var logBuf bytes.Buffer
	srv := newTestServer(t, &logBuf, 10, 20, 30)

	body, _ := json.Marshal(setParityRequest{Indices: []int64{}})
	req := httptest.NewRequest(http.MethodPost, "/query/setparity", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFullSetEndpointRejectsMalformedKey(t *testing.T) {
	var logBuf bytes.Buffer
	srv := newTestServer(t, &logBuf, makeFixtureValues(4096)...)

	body, _ := json.Marshal(fullSetRequest{PRFKey: "not-hex"})
	req := httptest.NewRequest(http.MethodPost, "/query/fullset", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, logBuf.String(), "not-hex", "log must never contain the supplied key material")
}

func TestFullSetEndpointSuccess(t *testing.T) {
	var logBuf bytes.Buffer
	srv := newTestServer(t, &logBuf, makeFixtureValues(4096)...)

	key := strings.Repeat("ab", 16)
	body, _ := json.Marshal(fullSetRequest{PRFKey: key})
	req := httptest.NewRequest(http.MethodPost, "/query/fullset", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, logBuf.String(), key, "log must never contain the prf key")
}

func TestCORSAndSecurityHeadersPresentOnEveryResponse(t *testing.T) {
	var logBuf bytes.Buffer
	srv := newTestServer(t, &logBuf, 1, 2, 3)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestOversizedBodyIsRejected(t *testing.T) {
	var logBuf bytes.Buffer
	srv := newTestServer(t, &logBuf, 1, 2, 3)

	oversized := strings.Repeat("a", maxBodyBytes+1)
	payload := `{"index":` + strconv.Itoa(0) + `,"padding":"` + oversized + `"}`
	req := httptest.NewRequest(http.MethodPost, "/query/plaintext", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	var logBuf bytes.Buffer
	srv := newTestServer(t, &logBuf, 1, 2, 3)

	req := httptest.NewRequest(http.MethodPost, "/query/plaintext", strings.NewReader(`{"index":0,"bogus":1}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func makeFixtureValues(n int) []uint64 {
	values := make([]uint64, n)
	for i := range values {
		values[i] = uint64(i) * 31
	}
	return values
}
