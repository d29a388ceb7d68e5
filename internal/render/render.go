// Package render substitutes named {{variable}} placeholders into template
// strings. Unresolved variables render as empty strings, so a partial
// context never fails a render.
package render

import (
	"regexp"
	"strings"

	"github.com/mailward/mailward/internal/models"
)

// variable pattern for template substitution: {{variable_name}}
var varPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Render renders a template's subject and HTML body with the provided
// context. It never fails: unknown variables become empty strings.
func Render(tmpl *models.Template, context map[string]string) (subject, bodyHTML string) {
	return Substitute(tmpl.Subject, context), Substitute(tmpl.BodyHTML, context)
}

// Substitute replaces {{variable}} patterns in s with values from vars.
func Substitute(s string, vars map[string]string) string {
	if s == "" {
		return s
	}

	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		return vars[name]
	})
}
