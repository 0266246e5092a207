package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/livecommerce/stream-analyzer/internal/config"
	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service handles sending notifications via various channels
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// Enabled reports whether any channel is configured.
func (s *Service) Enabled() bool {
	return s.config.TeamsWebhookURL != "" || s.config.NotificationEmail != ""
}

// SendReport sends a report summary via configured notification channels
func (s *Service) SendReport(report *models.AnalysisReport) error {
	view := newReportView(report)
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.postTeams(s.buildTeamsMessage(view)); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent report to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(view); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent report via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// SendAlert posts a failed analysis to Teams
func (s *Service) SendAlert(alert *models.Alert) error {
	if s.config.TeamsWebhookURL == "" {
		logrus.Infof("Alert not sent, no Teams webhook: %s - %s", alert.SessionID, alert.Title)
		return nil
	}

	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   alert.Title,
		Text:    alert.Message,
		Sections: []TeamsSection{{
			Facts: []TeamsFact{
				{Name: "セッション", Value: alert.SessionID},
				{Name: "発生時刻", Value: alert.CreatedAt.Format("2006-01-02 15:04:05 MST")},
			},
		}},
	}
	return s.postTeams(message)
}

func (s *Service) postTeams(message *TeamsMessage) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(view reportView) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("ライブコマース分析レポート - %s", view.SessionID),
		Text:    fmt.Sprintf("配信時間 %d分 / コメント %d件", view.Duration, view.TotalComments),
	}

	facts := []TeamsFact{{Name: "生成日時", Value: view.GeneratedAt.Format("2006-01-02 15:04:05 MST")}}
	for _, stat := range view.Stats {
		facts = append(facts, TeamsFact{Name: stat.Name, Value: stat.Value})
	}
	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "サマリー",
		Facts:         facts,
		Markdown:      true,
	})

	if len(view.Peaks) > 0 {
		var lines []string
		for _, p := range view.Peaks {
			lines = append(lines, fmt.Sprintf("**%s** %d分 (+%.0f) %s", p.Metric, p.Minute, p.Increase, p.Event))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "ピーク",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	var categoryFacts []TeamsFact
	for _, c := range view.Categories {
		categoryFacts = append(categoryFacts, TeamsFact{Name: c.Name, Value: c.Value})
	}
	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "コメント分類",
		Facts:         categoryFacts,
	})

	if view.Recommendations != nil && len(view.Recommendations.Improvements) > 0 {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "改善点",
			ActivityText:  strings.Join(view.Recommendations.Improvements, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(view reportView) error {
	subject := fmt.Sprintf("ライブコマース分析レポート - %s (コメント %d件)", view.SessionID, view.TotalComments)

	htmlBody, err := buildEmailHTML(view)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", buildEmailText(view))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

const emailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>ライブコマース分析レポート</title>
    <style>
        body { font-family: sans-serif; margin: 20px; }
        .header { background-color: #0078d4; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .peak { border-left: 4px solid #0078d4; padding: 10px; margin: 10px 0; background-color: #fafafa; }
    </style>
</head>
<body>
    <div class="header">
        <h1>ライブコマース分析レポート</h1>
        <p>{{.SessionID}} / {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>
    </div>

    <div class="summary">
        <h2>サマリー</h2>
        <p><strong>配信時間:</strong> {{.Duration}}分</p>
        {{range .Stats}}<p><strong>{{.Name}}:</strong> {{.Value}}</p>
        {{end}}
    </div>

    {{if .Peaks}}
    <h2>ピーク</h2>
    {{range .Peaks}}
    <div class="peak"><strong>{{.Metric}}</strong> {{.Minute}}分 (+{{printf "%.0f" .Increase}}) {{.Event}}</div>
    {{end}}
    {{end}}

    <h2>コメント分類 ({{.TotalComments}}件)</h2>
    <ul>
    {{range .Categories}}<li>{{.Name}}: {{.Value}}</li>
    {{end}}
    </ul>

    {{with .Recommendations}}
    {{if .GoodPoints}}<h2>良かった点</h2><ul>{{range .GoodPoints}}<li>{{.}}</li>{{end}}</ul>{{end}}
    {{if .Improvements}}<h2>改善点</h2><ul>{{range .Improvements}}<li>{{.}}</li>{{end}}</ul>{{end}}
    {{if .NextActions}}<h2>次回のアクション</h2><ul>{{range .NextActions}}<li>{{.}}</li>{{end}}</ul>{{end}}
    {{end}}
</body>
</html>
`

var emailHTML = template.Must(template.New("email").Parse(emailTemplate))

func buildEmailHTML(view reportView) (string, error) {
	var buf bytes.Buffer
	if err := emailHTML.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildEmailText(view reportView) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("ライブコマース分析レポート - %s\n", view.SessionID))
	text.WriteString(fmt.Sprintf("生成日時: %s\n\n", view.GeneratedAt.Format("2006-01-02 15:04:05 MST")))

	text.WriteString("サマリー\n")
	text.WriteString("========\n")
	text.WriteString(fmt.Sprintf("配信時間: %d分\n", view.Duration))
	for _, stat := range view.Stats {
		text.WriteString(fmt.Sprintf("%s: %s\n", stat.Name, stat.Value))
	}

	if len(view.Peaks) > 0 {
		text.WriteString("\nピーク\n")
		text.WriteString("======\n")
		for _, p := range view.Peaks {
			text.WriteString(fmt.Sprintf("%s %d分 (+%.0f) %s\n", p.Metric, p.Minute, p.Increase, p.Event))
		}
	}

	text.WriteString(fmt.Sprintf("\nコメント分類 (%d件)\n", view.TotalComments))
	text.WriteString("============\n")
	for _, c := range view.Categories {
		text.WriteString(fmt.Sprintf("%s: %s\n", c.Name, c.Value))
	}

	if view.Recommendations != nil {
		writeList(&text, "良かった点", view.Recommendations.GoodPoints)
		writeList(&text, "改善点", view.Recommendations.Improvements)
		writeList(&text, "次回のアクション", view.Recommendations.NextActions)
	}

	return text.String()
}

func writeList(text *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	text.WriteString(fmt.Sprintf("\n%s\n", title))
	for _, item := range items {
		text.WriteString(fmt.Sprintf("- %s\n", item))
	}
}
