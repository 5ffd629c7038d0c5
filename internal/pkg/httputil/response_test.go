package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, []string{"a", "b"}, 2)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"items":["a","b"],"count":2}`, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		body   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "url is required") }, http.StatusBadRequest, `{"error":"url is required"}`},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "record not found") }, http.StatusNotFound, `{"error":"record not found"}`},
		{"bad gateway", func(w http.ResponseWriter) { BadGateway(w, "upstream HTTP 404") }, http.StatusBadGateway, `{"error":"upstream HTTP 404"}`},
		{"internal", func(w http.ResponseWriter) { InternalError(w, errors.New("disk gone")) }, http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
