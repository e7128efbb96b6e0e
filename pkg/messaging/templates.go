package messaging

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// ResolveTemplate renders an HTML template definition with the given content
// infos.
func ResolveTemplate(tempName string, templateDef string, contentInfos map[string]string) (string, error) {
	if strings.TrimSpace(templateDef) == "" {
		return "", fmt.Errorf("empty template %q", tempName)
	}

	tmpl, err := template.New(tempName).Parse(templateDef)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", tempName, err)
	}

	var content bytes.Buffer
	if err := tmpl.Execute(&content, contentInfos); err != nil {
		return "", fmt.Errorf("executing template %s: %w", tempName, err)
	}
	return content.String(), nil
}
