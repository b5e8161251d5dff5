package formatter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalKeepsHTML(t *testing.T) {
	b, err := Marshal(map[string]string{"name": "King & Simcoe <N>"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"King & Simcoe <N>"}`, string(b))
}

func TestMarshalIndent(t *testing.T) {
	b, err := MarshalIndent(map[string][]int{"a": {1}})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1\n  ]\n}", string(b))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusBadGateway, ErrorBody{Error: "upstream", Status: "transport_error"}))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"upstream","status":"transport_error"}`, rec.Body.String())
}
