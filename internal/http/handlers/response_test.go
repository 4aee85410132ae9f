package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/thoughts-chat/internal/services"
	"github.com/tbourn/thoughts-chat/internal/store"
)

func Test_fail_500_LogsAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	// simulate RequestID + request-scoped logger
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-500")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/boom", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "kaboom")
	})
	r.GET("/missing", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, "nope")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.RequestID != "rid-500" || resp.Code != ErrCodeInternal || resp.Message != "kaboom" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log, got: %s", buf.String())
	}

	buf.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx should not be logged: %s", buf.String())
	}
}

func Test_failErr_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("send: %w", services.ErrEmptyText), http.StatusBadRequest, ErrCodeEmptyText},
		{services.ErrTooLong, http.StatusBadRequest, ErrCodeTextTooLong},
		{services.ErrEmptyName, http.StatusBadRequest, ErrCodeEmptyName},
		{services.ErrEmptyQuery, http.StatusBadRequest, ErrCodeEmptyQuery},
		{services.ErrInvalidStatus, http.StatusBadRequest, ErrCodeBadRequest},
		{services.ErrUserNotFound, http.StatusNotFound, ErrCodeUserNotFound},
		{store.WriteError("insert message", errors.New("disk full")), http.StatusServiceUnavailable, ErrCodeStorageUnavailable},
		{store.ReadError("list messages", errors.New("io")), http.StatusServiceUnavailable, ErrCodeStorageUnavailable},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, ErrCodeStorageUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, "fallback_code"},
	}

	for _, tc := range cases {
		r := gin.New()
		r.GET("/x", func(c *gin.Context) { failErr(c, tc.err, "fallback_code") })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		var resp ErrorResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if w.Code != tc.status || resp.Code != tc.code {
			t.Fatalf("failErr(%v) = %d %q; want %d %q", tc.err, w.Code, resp.Code, tc.status, tc.code)
		}
	}
}
