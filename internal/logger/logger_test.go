package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/contactbook/internal/config"
	"github.com/gin-gonic/gin"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	if _, err := Init(config.LogConfig{Level: "loud"}, gin.ReleaseMode); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	lg, err := Init(config.LogConfig{Level: "info", FileName: path, MaxSize: 1, MaxBackups: 1, MaxAge: 1}, gin.ReleaseMode)
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	lg.Info("hello")
	_ = lg.Sync()
}

func TestGinRecoveryReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinRecovery(false))
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}

func TestIsBrokenPipe(t *testing.T) {
	if !isBrokenPipe(errors.New("write: broken pipe")) {
		t.Fatal("expected broken pipe to be detected")
	}
	if isBrokenPipe(errors.New("something else")) {
		t.Fatal("unexpected broken pipe match")
	}
}
