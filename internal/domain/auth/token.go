package auth

import "time"

// TokenType 回應中的 token_type。
const TokenType = "Bearer"

// Token 為登入後取得的 access token。
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// ExpiresIn 剩餘秒數，已過期回 0。
func (t Token) ExpiresIn(now time.Time) int {
	if d := t.ExpiresAt.Sub(now); d > 0 {
		return int(d.Seconds())
	}
	return 0
}
