package services

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/contentflow-backend/internal/workflow"
)

//go:embed templates/notifications.yaml
var notificationTemplateFS embed.FS

type rawTemplate struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

type notificationTemplate struct {
	title   string
	message *template.Template
}

// NotificationTemplates renders the title and message of each workflow event.
type NotificationTemplates struct {
	byKey map[workflow.TemplateKey]notificationTemplate
}

// LoadNotificationTemplates parses the embedded catalogue and checks that
// every template key the workflow emits is present.
func LoadNotificationTemplates() (*NotificationTemplates, error) {
	raw, err := notificationTemplateFS.ReadFile("templates/notifications.yaml")
	if err != nil {
		return nil, fmt.Errorf("read notification templates: %w", err)
	}
	return ParseNotificationTemplates(raw)
}

func ParseNotificationTemplates(raw []byte) (*NotificationTemplates, error) {
	var doc map[string]rawTemplate
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse notification templates: %w", err)
	}
	out := &NotificationTemplates{byKey: make(map[workflow.TemplateKey]notificationTemplate, len(doc))}
	for key, t := range doc {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			return nil, fmt.Errorf("notification template %q has no title", key)
		}
		msg, err := template.New(key).Option("missingkey=error").Parse(strings.TrimSpace(t.Message))
		if err != nil {
			return nil, fmt.Errorf("notification template %q: %w", key, err)
		}
		out.byKey[workflow.TemplateKey(key)] = notificationTemplate{title: title, message: msg}
	}
	for _, key := range requiredTemplates {
		if _, ok := out.byKey[key]; !ok {
			return nil, fmt.Errorf("notification template %q is missing", key)
		}
	}
	return out, nil
}

var requiredTemplates = []workflow.TemplateKey{
	workflow.TemplateRequestCreated,
	workflow.TemplateRequestValidated,
	workflow.TemplateRequestAssigned,
	workflow.TemplateRequestPublished,
	workflow.TemplateContentReview,
	workflow.TemplateContentApproved,
	workflow.TemplateContentRejected,
	workflow.TemplateContentRevision,
}

func (t *NotificationTemplates) Render(key workflow.TemplateKey, data workflow.TemplateData) (string, string, error) {
	tpl, ok := t.byKey[key]
	if !ok {
		return "", "", fmt.Errorf("unknown notification template %q", key)
	}
	var buf bytes.Buffer
	if err := tpl.message.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %q: %w", key, err)
	}
	return tpl.title, buf.String(), nil
}
