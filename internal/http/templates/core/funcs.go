// Package core provides the template helpers shared by every page.
package core

import (
	"bytes"
	"errors"
	"html/template"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
	StaticPrefix       string
}

// Funcs returns a template.FuncMap with the helpers used across templates.
func Funcs(deps Deps) template.FuncMap {
	prefix := deps.StaticPrefix
	if prefix == "" {
		prefix = "/static/"
	}

	funcs := template.FuncMap{
		"sectionTmpl":  deps.ContentTemplateFor,
		"asset":        func(name string) string { return prefix + strings.TrimPrefix(name, "/") },
		"add":          func(a, b int) int { return a + b },
		"contains":     strings.Contains,
		"eqFold":       strings.EqualFold,
		"join":         strings.Join,
		"truncateText": TruncateText,
		"initials":     Initials,
		"postedDate":   PostedDate,
	}

	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped during ExecuteTemplate.
		return template.HTML(buf.String()), nil
	}
	return funcs
}

// TruncateText truncates s to at most maxLen runes, ending in an ellipsis when cut.
func TruncateText(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen == 1 {
		return string(runes[:1])
	}
	return strings.TrimRightFunc(string(runes[:maxLen-1]), unicode.IsSpace) + "…"
}

// Initials returns up to two upper-case initials for an avatar placeholder.
func Initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// PostedDate renders a YYYY-MM-DD date as "Apr 3, 2024". Other values are returned as-is.
func PostedDate(s string) string {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}
