package httpapi

import (
	"errors"
	"log"
	"net/http"
	"time"

	"utility-kpi/internal/application/auth"
	authDomain "utility-kpi/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleLogin(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}

	res, err := s.loginUC.Execute(c.Request.Context(), auth.LoginInput{
		Email:    body.Email,
		Password: body.Password,
	})
	switch {
	case errors.Is(err, authDomain.ErrInvalidCredentials):
		log.Printf("[Auth] login failed email=%s", body.Email)
		writeError(c, http.StatusUnauthorized, errCodeInvalidCredentials, "invalid credentials")
		return
	case errors.Is(err, authDomain.ErrUserDisabled):
		log.Printf("[Auth] disabled account email=%s", body.Email)
		writeError(c, http.StatusForbidden, errCodeForbidden, "user disabled")
		return
	case err != nil:
		log.Printf("[Auth] login error email=%s: %v", body.Email, err)
		writeError(c, http.StatusInternalServerError, errCodeInternal, "login failed")
		return
	}
	log.Printf("[Auth] login success user_id=%s role=%s", res.User.ID, res.User.Role)

	s.setAccessCookie(c, res.Token.AccessToken, res.Token.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": res.Token.AccessToken,
		"token_type":   authDomain.TokenType,
		"expires_in":   res.Token.ExpiresIn(time.Now()),
		"role":         res.User.Role,
		"permissions":  res.User.Role.Permissions(),
	})
}

func (s *Server) setAccessCookie(c *gin.Context, token string, expiry time.Time) {
	seconds := authDomain.Token{ExpiresAt: expiry}.ExpiresIn(time.Now())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookieName, token, seconds, "/", "", false, true)
}
