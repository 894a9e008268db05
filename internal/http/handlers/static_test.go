package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCRServesStaticPage(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest("GET", "/pcr", nil)
	rec := httptest.NewRecorder()
	h.PCR(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "tsrelay")
}

func TestHealthz(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"status":"ok","programs_in_use":0,"capacity":4}`, rec.Body.String())
}
