package theme

import "strings"

const (
	// CookieName is the jar key holding the theme token.
	CookieName = "theme"
	// DefaultValue is applied when the jar carries no theme entry.
	DefaultValue = "light"
)

// FromJar extracts the theme token from a semicolon-delimited cookie jar.
//
// The first entry whose trimmed text starts with "theme=" wins. Its value is
// cut at the next '=', so "theme=a=b" yields "a". An empty or unrelated jar
// yields DefaultValue.
func FromJar(jar string) string {
	prefix := CookieName + "="
	for _, candidate := range strings.Split(jar, ";") {
		pair := strings.TrimSpace(candidate)
		if !strings.HasPrefix(pair, prefix) {
			continue
		}
		value := pair[len(prefix):]
		if idx := strings.IndexByte(value, '='); idx >= 0 {
			value = value[:idx]
		}
		return value
	}
	return DefaultValue
}
