package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseID(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptionalInt(t *testing.T) {
	n, err := ParseOptionalInt("", 20)
	assert.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = ParseOptionalInt("5", 20)
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = ParseOptionalInt("five", 20)
	assert.Error(t, err)
}

func TestPointers(t *testing.T) {
	x := "x"
	assert.Equal(t, "x", PtrString(&x))
	assert.Equal(t, "", PtrString(nil))
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)

	WriteSuccess(w, r, http.StatusCreated, map[string]int{"id": 1}, "created")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "created", body["message"])
	assert.NotContains(t, body, "error")
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)

	WriteJSONError(w, r, http.StatusBadRequest, "Validation failed", map[string]string{"items": "required"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Validation failed", body.Error)
	assert.Equal(t, map[string]any{"items": "required"}, body.Details)
}
