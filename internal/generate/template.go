package generate

import "strings"

// FillTemplate substitutes {name} placeholders with the provided values.
// Only exact `{key}` sequences for known keys are replaced, so literal JSON
// braces in the template (such as an embedded example object) pass through
// untouched. Unknown placeholders are left intact.
func FillTemplate(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
