package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestClearAllEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	backend := NewMemoryBackend()
	store := NewStore(nil, backend)
	for _, kind := range Kinds {
		if err := backend.Save(context.Background(), "user-1", kind, Record{"id": "r-1"}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(store).RegisterRoutes(router.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/history", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	for _, kind := range Kinds {
		recs, err := backend.Load(context.Background(), "user-1", kind, 10)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("kind %q not cleared", kind)
		}
	}
}
