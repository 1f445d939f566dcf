// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/autoimport-backend/internal/i18n"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

// I18nMiddleware picks the first supported language from Accept-Language,
// e.g. "ro-RO,ro;q=0.9,en;q=0.8".
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.ContextKeyLang, parseLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func parseLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		base, _, _ := strings.Cut(strings.ReplaceAll(tag, "_", "-"), "-")
		base = strings.ToLower(base)
		if base != "" && i18n.IsSupported(base) {
			return base
		}
	}
	return i18n.DefaultLanguage()
}
