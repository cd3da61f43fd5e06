package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type newLeadEmailData struct {
	baseEmailData
	KindLabel   string
	ContactName string
	Email       string
	Phone       string
	Company     string
	EventDate   string
	GuestCount  int
	Message     string
}

const subjectNewLeadFmt = "Nouvelle demande %s - %s"

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func kindLabel(kind string) string {
	if kind == "mariage" {
		return "mariage"
	}
	return "B2B"
}

func newLeadContent(data NewLeadEmailData) (subject, html string, err error) {
	label := kindLabel(data.Kind)
	subject = fmt.Sprintf(subjectNewLeadFmt, label, data.ContactName)
	html, err = renderEmailTemplate("new_lead.html", newLeadEmailData{
		baseEmailData: baseEmailData{
			Title:    "Nouvelle demande reçue",
			Heading:  "Nouvelle demande reçue",
			CTALabel: "Ouvrir le tableau de bord",
			CTAURL:   data.DashboardURL,
		},
		KindLabel:   label,
		ContactName: data.ContactName,
		Email:       data.Email,
		Phone:       data.Phone,
		Company:     data.Company,
		EventDate:   data.EventDate,
		GuestCount:  data.GuestCount,
		Message:     data.Message,
	})
	return subject, html, err
}
