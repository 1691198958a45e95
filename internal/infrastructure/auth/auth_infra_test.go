package authinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"utility-kpi/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTIssuer_IssueAndParse(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Hour)
	user := auth.User{ID: "u-1", Email: "admin@example.com", Role: auth.RoleAdmin}

	token, err := issuer.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !token.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", token.ExpiresAt)
	}

	claims, err := issuer.ParseAccessToken(token.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken failed: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTIssuer_RejectsOtherSecret(t *testing.T) {
	token, err := NewJWTIssuer("secret-a", time.Hour).Issue(context.Background(), auth.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := NewJWTIssuer("secret-b", time.Hour).ParseAccessToken(token.AccessToken); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestJWTIssuer_RejectsExpired(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.Issue(context.Background(), auth.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	issuer.now = time.Now
	if _, err := issuer.ParseAccessToken(token.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestJWTIssuer_RejectsForeignIssuer(t *testing.T) {
	claims := Claims{
		UserID: "u-1",
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewJWTIssuer("secret", time.Hour).ParseAccessToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	pwd := "password123"
	hashed, err := h.Hash(pwd)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if cost, err := bcrypt.Cost([]byte(hashed)); err != nil || cost != bcrypt.MinCost {
		t.Fatalf("expected cost %d, got %d err=%v", bcrypt.MinCost, cost, err)
	}

	if !h.Compare(hashed, pwd) {
		t.Error("Compare failed")
	}
	if h.Compare(hashed, "wrong") || h.Compare("", pwd) {
		t.Error("Compare should have failed")
	}
	if _, err := h.Hash(""); err == nil {
		t.Error("expected error for empty password")
	}
}
