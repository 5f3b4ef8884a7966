package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by RequireRole
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

const accessTokenCookie = "access_token"

// Claims is what the gateway reads from an access token.
type Claims struct {
	Subject string
	Role    string
}

// ParseToken validates an HMAC-signed token and extracts its subject and role.
func ParseToken(tokenString string, secret []byte) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid {
		return Claims{}, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid token claims")
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Claims{}, errors.New("role not found in token")
	}
	return Claims{Subject: subject(claims["sub"]), Role: role}, nil
}

// subject accepts string and numeric "sub" claims.
func subject(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return fmt.Sprintf("%.0f", s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// tokenFromRequest tries the cookie first, then the Authorization header.
func tokenFromRequest(c *gin.Context) (string, string) {
	tokenString, cookieErr := c.Cookie(accessTokenCookie)
	if cookieErr == nil && tokenString != "" {
		return tokenString, ""
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization is missing"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization format. Expected 'Bearer <token>'"
	}
	return parts[1], ""
}

// RequireRole validates the JWT and checks that its role is one of allowedRoles.
func RequireRole(secret []byte, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := tokenFromRequest(c)
		if problem != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, problem))
			return
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		roleAllowed := false
		for _, role := range allowedRoles {
			if claims.Role == role {
				roleAllowed = true
				break
			}
		}
		if !roleAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUserRole, claims.Role)

		c.Next()
	}
}

// Actor returns the authenticated user id and role set by RequireRole.
func Actor(c *gin.Context) (userID, role string) {
	return c.GetString(ContextUserID), c.GetString(ContextUserRole)
}
