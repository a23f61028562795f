package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/atlasclinic/clinic-api/pkg/i18n"
)

const ContextLang = "lang"

// Language resolves the response language for the request: the ?lang
// query parameter wins, then the Accept-Language header, then French.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("lang")
		if raw == "" {
			raw = c.GetHeader("Accept-Language")
		}
		c.Set(ContextLang, i18n.Parse(raw))
		c.Next()
	}
}

// LangFrom extracts the resolved language, defaulting to French.
func LangFrom(c *gin.Context) i18n.Lang {
	if v, exists := c.Get(ContextLang); exists {
		if lang, ok := v.(i18n.Lang); ok {
			return lang
		}
	}
	return i18n.French
}
