package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

const Welcome = "welcome"

var subjects = map[string]string{
	Welcome: "Welcome to {{.AppName}}",
}

var (
	htmlTemplates = htmpl.Must(htmpl.ParseFS(FS, "*.html.tmpl"))
	textTemplates = texttpl.Must(texttpl.ParseFS(FS, "*.txt.tmpl"))
)

// WelcomeData builds the Data map for a welcome email job.
func WelcomeData(appName, username, email, profileImage string) map[string]any {
	return map[string]any{
		"AppName":      appName,
		"Username":     username,
		"Email":        email,
		"ProfileImage": profileImage,
	}
}

// Render renders the named template with data and returns subject, text and html bodies.
func Render(name string, data map[string]any) (string, string, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	subjTpl, ok := subjects[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	if data == nil {
		data = map[string]any{}
	}

	var subj bytes.Buffer
	st, err := texttpl.New("subject").Parse(subjTpl)
	if err != nil {
		return "", "", "", err
	}
	if err := st.Execute(&subj, data); err != nil {
		return "", "", "", err
	}

	var text bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return "", "", "", err
	}
	var html bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return subj.String(), text.String(), html.String(), nil
}
