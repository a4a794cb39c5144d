package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/card-order-api/internal/models"
	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
)

type stubValidator struct {
	token  string
	claims *models.AdminClaims
}

func (s stubValidator) ValidateToken(token string) (*models.AdminClaims, error) {
	if token != s.token {
		return nil, appErrors.ErrUnauthorized
	}
	return s.claims, nil
}

type stubObserver struct {
	method string
	path   string
	status int
}

func (s *stubObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	s.method, s.path, s.status = method, path, status
}

func newAdminRouter(handler gin.HandlerFunc) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	seen := new(string)
	router := gin.New()
	router.Use(handler)
	router.GET("/admin", func(c *gin.Context) {
		if claims, ok := AdminClaims(c); ok {
			*seen = claims.Name
		}
		c.Status(http.StatusNoContent)
	})
	return router, seen
}

func TestAdminJWT(t *testing.T) {
	validator := stubValidator{token: "good", claims: &models.AdminClaims{Name: "Lee"}}
	router, seen := newAdminRouter(AdminJWT(validator))

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Basic good", http.StatusUnauthorized},
		{"Bearer bad", http.StatusUnauthorized},
		{"bearer good", http.StatusNoContent},
	}
	for _, tc := range cases {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		router.ServeHTTP(recorder, req)
		if recorder.Code != tc.status {
			t.Fatalf("header %q: expected %d, got %d", tc.header, tc.status, recorder.Code)
		}
	}
	if *seen != "Lee" {
		t.Fatalf("expected claims to reach handler, got %q", *seen)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &stubObserver{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/api/admin-detail", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/admin-detail?applicationId=LN-2025-0001", nil))
	if observer.path != "/api/admin-detail" || observer.status != http.StatusOK {
		t.Fatalf("unexpected observation: %+v", observer)
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/path", nil))
	if observer.path != "unmatched" || observer.status != http.StatusNotFound {
		t.Fatalf("unexpected observation: %+v", observer)
	}
}
