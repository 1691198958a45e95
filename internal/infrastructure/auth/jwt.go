package authinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"utility-kpi/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken token 簽章、期限或簽發者不符。
var ErrInvalidToken = errors.New("invalid access token")

const tokenIssuer = "utility-kpi"

// JWTIssuer 簽發與驗證報表 API 的 HS256 access token。
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	j := &JWTIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	j.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return j.now() }),
	)
	return j
}

// Claims access token 的 payload；Role 為字串，由呼叫端解析。
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issue 依使用者角色簽發 token。
func (j *JWTIssuer) Issue(_ context.Context, user auth.User) (auth.Token, error) {
	now := j.now()
	exp := now.Add(j.ttl)
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return auth.Token{}, fmt.Errorf("sign token: %w", err)
	}
	return auth.Token{AccessToken: signed, ExpiresAt: exp}, nil
}

// ParseAccessToken 驗證 token，失敗時錯誤包含 ErrInvalidToken。
func (j *JWTIssuer) ParseAccessToken(token string) (Claims, error) {
	var claims Claims
	if _, err := j.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return Claims{}, fmt.Errorf("%w: missing uid", ErrInvalidToken)
	}
	return claims, nil
}
