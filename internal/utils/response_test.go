package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestSuccessResponseCarriesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	SuccessResponse(c, http.StatusOK, "ok", gin.H{"uid": "112233"})

	resp := decode(t, w)
	if !resp.Success || resp.RequestID != "req-1" || resp.Error != nil {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Timestamp.IsZero() {
		t.Error("timestamp missing")
	}
}

func TestErrorResponseCodes(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, "BAD_REQUEST"},
		{http.StatusConflict, "CONFLICT"},
		{http.StatusBadGateway, "BAD_GATEWAY"},
		{http.StatusTeapot, "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		ErrorResponse(c, tt.status, "failed", errors.New("boom"))

		if w.Code != tt.status {
			t.Errorf("status = %d, want %d", w.Code, tt.status)
		}
		resp := decode(t, w)
		if resp.Success || resp.Error == nil || resp.Error.Code != tt.code || resp.Error.Details != "boom" {
			t.Errorf("status %d: resp = %+v", tt.status, resp)
		}
	}
}

func TestErrorResponseWithCode(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorResponseWithCode(c, http.StatusConflict, "READER_NOT_CONNECTED", "Reader not connected", nil)

	resp := decode(t, w)
	if resp.Error == nil || resp.Error.Code != "READER_NOT_CONNECTED" || resp.Error.Details != "" {
		t.Errorf("resp = %+v", resp)
	}
}
