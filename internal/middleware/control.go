package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/playmatatu/galton/internal/config"
)

var ErrInvalidControlToken = errors.New("invalid control token")

// ControlClaims binds a control token to one session.
type ControlClaims struct {
	SessionToken string `json:"session"`
	jwt.RegisteredClaims
}

// IssueControlToken signs a token that lets its holder drive the given session.
func IssueControlToken(secret, sessionToken string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := ControlClaims{
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign control token: %w", err)
	}
	return signed, exp, nil
}

// ParseControlToken validates a control token and returns the session it grants.
func ParseControlToken(secret, tokenString string) (string, error) {
	claims := &ControlClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid || claims.SessionToken == "" {
		return "", ErrInvalidControlToken
	}
	return claims.SessionToken, nil
}

// ControlAuth requires a control token for the session named by the :token route
// parameter. The token is read from the Authorization header, falling back to the
// `ct` query parameter.
func ControlAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		} else {
			token = c.Query("ct")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing control token"})
			return
		}

		sessionToken, err := ParseControlToken(cfg.JWTSecret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid control token"})
			return
		}
		if sessionToken != c.Param("token") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "control token is for another session"})
			return
		}

		c.Set("session_token", sessionToken)
		c.Next()
	}
}
