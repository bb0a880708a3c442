package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newGuardedRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/post", APIKey(key, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func doRequest(t *testing.T, r *gin.Engine, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/post", nil)
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAPIKeyValid(t *testing.T) {
	resp := doRequest(t, newGuardedRouter("sekrit"), "sekrit")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAPIKeyMissingOrWrong(t *testing.T) {
	for _, provided := range []string{"", "wrong"} {
		resp := doRequest(t, newGuardedRouter("sekrit"), provided)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("key %q: expected 401, got %d", provided, resp.Code)
		}

		var payload map[string]any
		if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
			t.Fatalf("json parse: %v", err)
		}
		if payload["success"] != false {
			t.Fatalf("expected success=false, got %v", payload["success"])
		}
		if payload["error"] != "Unauthorized — invalid API key" {
			t.Fatalf("unexpected error message: %v", payload["error"])
		}
	}
}

func TestAPIKeyServerNotConfigured(t *testing.T) {
	resp := doRequest(t, newGuardedRouter(""), "anything")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
