package message

import "regexp"

// Formatter turns a message template and its parameters into a final string.
type Formatter interface {
	Format(template string, params map[string]string) string
}

// FormatterFunc adapts a plain function to the Formatter interface.
type FormatterFunc func(template string, params map[string]string) string

func (f FormatterFunc) Format(template string, params map[string]string) string {
	return f(template, params)
}

// Default substitutes placeholders without translation.
var Default Formatter = FormatterFunc(Format)

var paramRegex = regexp.MustCompile(`%\{([^}]+)\}`)

// Format replaces every %{name} in template with params[name].
// Placeholders without a parameter are kept verbatim.
func Format(template string, params map[string]string) string {
	if len(params) == 0 {
		return template
	}
	return paramRegex.ReplaceAllStringFunc(template, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := params[name]; ok {
			return val
		}
		return match
	})
}

// Placeholders lists the parameter names referenced by template, in order of
// first appearance.
func Placeholders(template string) []string {
	matches := paramRegex.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
