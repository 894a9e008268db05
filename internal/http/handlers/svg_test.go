package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSVGWithNoEntriesReturnsEmptyBody(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest("GET", "/ss?udp=127.0.0.1:9", nil)
	rec := httptest.NewRecorder()

	h.SVG(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Empty(t, rec.Body.String())
}
