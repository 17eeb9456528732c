// Package view builds the template engine and the helpers templates call.
package view

import (
	"strings"
	"unicode"
	"unicode/utf8"

	html "github.com/gofiber/template/html/v2"
)

// Layout wraps every rendered page.
const Layout = "layouts/main"

// NewEngine loads templates from dir. reload re-parses on every render (dev).
func NewEngine(dir string, reload bool) *html.Engine {
	engine := html.New(dir, ".html")
	engine.Reload(reload)
	engine.AddFuncMap(map[string]any{
		"truncate":   Truncate,
		"capitalize": Capitalize,
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
	})
	return engine
}

// Truncate cuts s to n runes and appends "..." when it was longer.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimRightFunc(string(r[:n]), unicode.IsSpace) + "..."
}

// Capitalize upper-cases the first letter only.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
