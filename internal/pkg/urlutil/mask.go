// Package urlutil содержит утилиты для безопасного логирования URL.
package urlutil

import "net/url"

// MaskURL оставляет только scheme и host: path, query и userinfo
// могут содержать токены или пароли.
//
//	"sqlserver://user:pwd@db:1433?database=X" → "sqlserver://db:1433/***"
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***invalid-url***"
	}
	return u.Scheme + "://" + u.Host + "/***"
}
