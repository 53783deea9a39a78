package middleware

import (
	"assessment_backend/internal/config"
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

var testJWT = config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Issuer: "accounts"}

func token(t *testing.T, role model.UserRole, cfg config.JWTConfig, ttl time.Duration) string {
	t.Helper()
	tok, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: 7}, Role: role, Email: "a@b.c"}, cfg, ttl)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestAuthAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := r.Group("/", AuthMiddleware(func() config.JWTConfig { return testJWT }))
	auth.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, "%d", util.GetUserFromContext(c).UserID)
	})
	auth.GET("/teacher", RoleMiddleware(model.Teacher), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no token", "/me", "", http.StatusUnauthorized},
		{"garbage", "/me", "Bearer nope", http.StatusUnauthorized},
		{"wrong secret", "/me", "Bearer " + token(t, model.Student, config.JWTConfig{Secret: "other-secret", Issuer: "accounts"}, time.Hour), http.StatusUnauthorized},
		{"wrong issuer", "/me", "Bearer " + token(t, model.Student, config.JWTConfig{Secret: testJWT.Secret, Issuer: "elsewhere"}, time.Hour), http.StatusUnauthorized},
		{"expired", "/me", "Bearer " + token(t, model.Student, testJWT, -time.Minute), http.StatusUnauthorized},
		{"student", "/me", "Bearer " + token(t, model.Student, testJWT, time.Hour), http.StatusOK},
		{"student on teacher route", "/teacher", "Bearer " + token(t, model.Student, testJWT, time.Hour), http.StatusForbidden},
		{"teacher", "/teacher", "Bearer " + token(t, model.Teacher, testJWT, time.Hour), http.StatusOK},
		{"admin", "/teacher", "Bearer " + token(t, model.Admin, testJWT, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
