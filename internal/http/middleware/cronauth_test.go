package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCronRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.POST("/cron/job", CronAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ran": true})
	})
	return r
}

func TestCronAuth_ValidSecret(t *testing.T) {
	r := newCronRouter("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/cron/job", nil)
	req.Header.Set(HeaderCronSecret, "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestCronAuth_MissingAndWrongSecret(t *testing.T) {
	r := newCronRouter("s3cret")

	for name, header := range map[string]string{
		"missing": "",
		"wrong":   "nope",
	} {
		req := httptest.NewRequest(http.MethodPost, "/cron/job", nil)
		if header != "" {
			req.Header.Set(HeaderCronSecret, header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: bad body: %v", name, err)
		}
		if body["code"] != "unauthorized" {
			t.Fatalf("%s: code = %v, want unauthorized", name, body["code"])
		}
	}
}

func TestCronAuth_UnconfiguredSecretIs500(t *testing.T) {
	// An empty secret is a deployment error, not an open endpoint.
	r := newCronRouter("")

	req := httptest.NewRequest(http.MethodPost, "/cron/job", nil)
	req.Header.Set(HeaderCronSecret, "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["code"] != "auth_config_error" {
		t.Fatalf("code = %v, want auth_config_error", body["code"])
	}
}
