package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/spectra-quiz/pkg/auth"
)

// AdminSubjectKey - ключ контекста с subject административного токена
const AdminSubjectKey = "admin_subject"

// AdminAuthMiddleware защищает административные маршруты
type AdminAuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAdminAuthMiddleware создает middleware. Без jwtService все запросы получают 403.
func NewAdminAuthMiddleware(jwtService *auth.JWTService) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{jwtService: jwtService}
}

// RequireAdmin проверяет заголовок Authorization: Bearer {token}
func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.jwtService == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access is disabled"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.jwtService.Parse(parts[1])
		if err != nil {
			errorType := "token_invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				errorType = "token_expired"
			}
			log.Printf("[AdminAuth] Отклонён токен: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errorType})
			return
		}

		c.Set(AdminSubjectKey, claims.Subject)
		c.Next()
	}
}
