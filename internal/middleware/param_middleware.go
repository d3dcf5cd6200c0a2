package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractIntQuery создает middleware для извлечения и валидации числового query-параметра.
// Отсутствующий параметр даёт 0; значение вне [0, max] отклоняется с 400.
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
func ExtractIntQuery(paramName, contextKey string, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query(paramName)
		if raw == "" {
			c.Set(contextKey, 0)
			c.Next()
			return
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 || value > max {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			return
		}
		c.Set(contextKey, value)
		c.Next()
	}
}
