package handler

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"golang.org/x/text/cases"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DukeRupert/clientdesk/internal/csrf"
)

// clientCountKey is the catalog key for the client count line.
const clientCountKey = "%d clientes"

var printer *message.Printer

func init() {
	_ = message.Set(language.BrazilianPortuguese, clientCountKey,
		plural.Selectf(1, "%d",
			"=0", "Nenhum cliente",
			"one", "%d cliente",
			"other", "%d clientes",
		))
	printer = message.NewPrinter(language.BrazilianPortuguese)
}

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Math functions
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},

		// Date/Time functions
		"year": func() int {
			return time.Now().Year()
		},

		// String functions
		"lower": strings.ToLower,
		"title": func(v any) string {
			return cases.Title(language.BrazilianPortuguese).String(fmt.Sprint(v))
		},

		// cn merges Tailwind class lists; later classes win conflicts.
		"cn": func(classes ...string) string {
			return twmerge.Merge(classes...)
		},

		// Localized counts and numbers
		"clientCount": func(n int) string {
			return printer.Sprintf(clientCountKey, n)
		},
		"number": func(n int) string {
			return printer.Sprintf("%d", n)
		},

		// Conditional/Logic functions
		"ternary": func(condition bool, trueVal, falseVal any) any {
			if condition {
				return trueVal
			}
			return falseVal
		},
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},

		// Collection functions
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil
				}
				dict[key] = values[i+1]
			}
			return dict
		},

		// CSRF helpers
		"csrfField": func(token string) template.HTML {
			return template.HTML(fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`,
				csrf.FormFieldName, template.HTMLEscapeString(token)))
		},
		"csrfHeaders": func(token string) string {
			return fmt.Sprintf(`{"%s": "%s"}`, csrf.HeaderName, template.JSEscapeString(token))
		},
	}
}
