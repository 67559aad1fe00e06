package handler

import (
	"strings"

	"github.com/contactbook/internal/locale"
	"github.com/gin-gonic/gin"
)

const localeContextKey = "__request_locale"

// LocaleMiddleware resolves request language and sets headers for downstream caching.
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		language := a.requestLanguage(c)
		c.Header("Content-Language", locale.ContentLanguage(language))
		appendVaryHeader(c, "Accept-Language")
		c.Next()
	}
}

// requestLanguage 依次读取 ?lang=、Accept-Language，最后回落到表格语言
func (a *API) requestLanguage(c *gin.Context) string {
	if cached, exists := c.Get(localeContextKey); exists {
		if language, ok := cached.(string); ok {
			return language
		}
	}

	language := locale.NormalizeLanguage(c.Query("lang"))
	if language == "" {
		language = locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language"))
	}
	if language == "" {
		language = a.language
	}

	c.Set(localeContextKey, language)
	return language
}

func (a *API) text(c *gin.Context, english, chinese string) string {
	return locale.Pick(a.requestLanguage(c), english, chinese)
}

func appendVaryHeader(c *gin.Context, values ...string) {
	existing := c.Writer.Header().Values("Vary")
	seen := make(map[string]struct{})
	for _, line := range existing {
		for _, part := range strings.Split(line, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				seen[strings.ToLower(trimmed)] = struct{}{}
			}
		}
	}
	for _, value := range values {
		if _, ok := seen[strings.ToLower(value)]; ok {
			continue
		}
		c.Writer.Header().Add("Vary", value)
		seen[strings.ToLower(value)] = struct{}{}
	}
}
