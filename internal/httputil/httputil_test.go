package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString_TriState(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *string
	}{
		{"absent", `{}`, false, nil},
		{"null", `{"pid": null}`, true, nil},
		{"empty", `{"pid": ""}`, true, strPtr("")},
		{"value", `{"pid": "abc"}`, true, strPtr("abc")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				PID OptionalString `json:"pid"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.wantPresent, req.PID.Present)
			assert.Equal(t, tt.wantValue, req.PID.Value)
		})
	}
}

func TestParseJSON_RejectsUnknownFields(t *testing.T) {
	var dest struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	assert.Error(t, ParseJSON(httptest.NewRecorder(), r, &dest))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, ParseJSON(httptest.NewRecorder(), r, &dest))
	assert.Equal(t, "a", dest.Name)
}

func TestRespondErrorWithExtras(t *testing.T) {
	w := httptest.NewRecorder()
	RespondErrorWithExtras(w, http.StatusUnprocessableEntity, "cyclic hierarchy", map[string]interface{}{
		"cycles": []string{"a", "b"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "cyclic hierarchy", body["detail"])
	assert.Equal(t, float64(422), body["status"])
	assert.Equal(t, []interface{}{"a", "b"}, body["cycles"])
}

func TestQueryBool(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?files=true&other=0", nil)
	assert.True(t, QueryBool(r, "files"))
	assert.False(t, QueryBool(r, "other"))
	assert.False(t, QueryBool(r, "missing"))
}

func strPtr(s string) *string { return &s }
