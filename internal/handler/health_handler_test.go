package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"rfid-service/internal/config"
	"rfid-service/internal/model"
)

func TestHealthReportsReaderState(t *testing.T) {
	stub := &stubReader{status: model.ReaderStatus{Status: model.StateError, LastError: "port busy", Port: "COM3"}}
	cfg := &config.Config{App: config.AppConfig{Name: "rfid-service", Version: "1.0.0"}}

	router := gin.New()
	NewHealthHandler(stub, cfg, zaptest.NewLogger(t)).RegisterRoutes(router.Group(""))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var health HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "degraded" || health.Service != "rfid-service" {
		t.Errorf("health = %+v", health)
	}
	if check := health.Checks["reader"]; check.Status != "error" || check.Message != "port busy" {
		t.Errorf("reader check = %+v", check)
	}

	for _, path := range []string{"/ready", "/live"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, w.Code)
		}
	}
}
