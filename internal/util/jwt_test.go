package util

import (
	"assessment_backend/internal/config"
	"assessment_backend/internal/model"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseJWT(t *testing.T) {
	cfg := config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Issuer: "accounts", Leeway: time.Minute}
	student := &model.User{BaseModel: model.BaseModel{ID: 3}, Role: model.Student}

	sign := func(claims jwt.Claims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return tok
	}
	valid, err := GenerateJWT(student, cfg, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	withinLeeway, _ := GenerateJWT(student, cfg, -30*time.Second)
	pastLeeway, _ := GenerateJWT(student, cfg, -2*time.Minute)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid", valid, false},
		{"expired within leeway", withinLeeway, false},
		{"expired past leeway", pastLeeway, true},
		{"no expiry", sign(&Claims{UserID: 3, RegisteredClaims: jwt.RegisteredClaims{Issuer: "accounts"}}), true},
		{"no user id", sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "accounts", ExpiresAt: future}}), true},
		{"other issuer", sign(&Claims{UserID: 3, RegisteredClaims: jwt.RegisteredClaims{Issuer: "other", ExpiresAt: future}}), true},
		{"none algorithm", func() string {
			tok, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 3, RegisteredClaims: jwt.RegisteredClaims{Issuer: "accounts", ExpiresAt: future}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
			return tok
		}(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseJWT(tt.token, cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (claims.UserID != 3 || claims.Subject != "3") {
				t.Fatalf("claims = %+v", claims)
			}
		})
	}
}

func TestParseJWT_IssuerOptional(t *testing.T) {
	signer := config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Issuer: "accounts"}
	tok, err := GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: 9}}, signer, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(tok, config.JWTConfig{Secret: signer.Secret}); err != nil {
		t.Fatalf("ParseJWT without issuer: %v", err)
	}
}
