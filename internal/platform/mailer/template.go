package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/taskflow/notify/internal/domain"
)

// bodyTemplate is the transactional email body. Kept deliberately plain:
// clients strip most styling anyway.
var bodyTemplate = template.Must(template.New("notification_email").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #1f2933;">
    <h2>{{.Title}}</h2>
    <p>{{.Message}}</p>
    <p style="color: #7b8794; font-size: 12px;">
      You are receiving this because your TaskFlow notification preference
      includes email. Manage preferences in your account settings.
    </p>
  </body>
</html>
`))

// Render produces the subject and HTML body for a notification email.
// Rendering is pure and synchronous.
func Render(n *domain.Notification) (subject, body string, err error) {
	subject = fmt.Sprintf("[TaskFlow] %s", n.Title)

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, n); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}

	return subject, buf.String(), nil
}
