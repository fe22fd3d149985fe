package email

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Placeholder is the only template variable; it is replaced by the
// recipient's full name.
const Placeholder = "{{Full_Name}}"

// DefaultTemplate is the HTML body used when no template file is configured.
//
//go:embed templates/default.html
var DefaultTemplate string

// LoadTemplate returns the HTML template stored at path, or DefaultTemplate
// when path is empty. The file must be UTF-8.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("template %s is not valid UTF-8", path)
	}

	return string(data), nil
}

// HasPlaceholder reports whether tmpl personalizes anything at all.
func HasPlaceholder(tmpl string) bool {
	return strings.Contains(tmpl, Placeholder)
}

// Render substitutes fullName for every Placeholder in tmpl. The name is
// inserted verbatim, without HTML escaping.
func Render(tmpl, fullName string) string {
	return strings.ReplaceAll(tmpl, Placeholder, fullName)
}
