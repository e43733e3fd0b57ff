package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/noah-isme/content-review-api/internal/models"
)

// EmailVariables are the placeholders available to the editable subject and body.
type EmailVariables struct {
	Subject     string
	PagesCount  int
	FromEmail   string
	ToFirstName string
	ToSurname   string
	ToEmail     string
}

// RenderedEmail is a notification ready for delivery.
type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

type emailPage struct {
	Title string
	Link  string
	DueOn string
}

const emailLayout = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="font-family: sans-serif; line-height: 1.5; color: #333;">
{{.Body}}
<table cellpadding="6" style="border-collapse: collapse; margin-top: 16px;">
<tr><th align="left">Page</th><th align="left">Review date</th></tr>
{{- range .Pages}}
<tr><td>{{if .Link}}<a href="{{.Link}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</td><td>{{.DueOn}}</td></tr>
{{- end}}
</table>
</body>
</html>`

// EmailRenderer turns the site's markdown body template into sanitised HTML.
type EmailRenderer struct {
	markdown   goldmark.Markdown
	sanitizer  *bluemonday.Policy
	layout     *template.Template
	cmsBaseURL string
}

// NewEmailRenderer builds a renderer. cmsBaseURL, when set, is used to link pages.
func NewEmailRenderer(cmsBaseURL string) *EmailRenderer {
	return &EmailRenderer{
		markdown:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer:  bluemonday.UGCPolicy(),
		layout:     template.Must(template.New("review-email").Parse(emailLayout)),
		cmsBaseURL: strings.TrimRight(cmsBaseURL, "/"),
	}
}

// Render fills the site's subject and body for owner and appends the page list.
func (r *EmailRenderer) Render(site *models.SiteSettings, from string, owner models.User, pages []models.Page) (RenderedEmail, error) {
	vars := EmailVariables{
		Subject:     site.Subject(),
		PagesCount:  len(pages),
		FromEmail:   from,
		ToFirstName: owner.FirstName,
		ToSurname:   owner.Surname,
		ToEmail:     owner.Email,
	}

	subject, err := execText("subject", site.Subject(), vars)
	if err != nil {
		return RenderedEmail{}, err
	}
	body, err := execText("body", site.Body(), vars)
	if err != nil {
		return RenderedEmail{}, err
	}

	var md bytes.Buffer
	if err := r.markdown.Convert([]byte(body), &md); err != nil {
		return RenderedEmail{}, fmt.Errorf("render email markdown: %w", err)
	}

	list := make([]emailPage, 0, len(pages))
	var text strings.Builder
	text.WriteString(body)
	text.WriteString("\n\n")
	for _, p := range pages {
		item := emailPage{Title: p.Title}
		if p.NextReviewDate != nil {
			item.DueOn = p.NextReviewDate.Format("2006-01-02")
		}
		if r.cmsBaseURL != "" {
			item.Link = r.cmsBaseURL + "/admin/pages/edit/show/" + p.ID
		}
		list = append(list, item)
		fmt.Fprintf(&text, "- %s (%s)", item.Title, item.DueOn)
		if item.Link != "" {
			fmt.Fprintf(&text, " %s", item.Link)
		}
		text.WriteString("\n")
	}

	var out bytes.Buffer
	err = r.layout.Execute(&out, map[string]interface{}{
		"Subject": subject,
		"Body":    template.HTML(r.sanitizer.Sanitize(md.String())),
		"Pages":   list,
	})
	if err != nil {
		return RenderedEmail{}, fmt.Errorf("render email layout: %w", err)
	}
	return RenderedEmail{Subject: strings.TrimSpace(subject), HTML: out.String(), Text: text.String()}, nil
}

func execText(name, src string, vars EmailVariables) (string, error) {
	tmpl, err := texttemplate.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse email %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("execute email %s: %w", name, err)
	}
	return buf.String(), nil
}
