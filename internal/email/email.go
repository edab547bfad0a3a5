// Package email renders and delivers the dashboard's notification emails.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	textTemplate "text/template"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// LogSender only logs. It is used when no email provider is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg *Message) error {
	log.Printf("[Email] (not configured) to=%s subject=%q", strings.Join(msg.To, ", "), msg.Subject)
	return nil
}

// mdRenderer escapes raw HTML in the markdown source.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1d4ed8; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header"><h2>{{.Title}}</h2></div>
    <div class="content">{{.Body}}</div>
    <div class="footer"><p>This email was sent by {{.From}}</p></div>
</div>
</body>
</html>
`))

// Markdown bodies, one per email kind
var bodies = map[string]*textTemplate.Template{
	"member_decision": textTemplate.Must(textTemplate.New("member_decision").Parse(
		`Hi {{.FullName}},

{{if .Approved}}Your request to join as **{{.Role}}** has been **approved**. Welcome aboard!{{else}}Your request to join as **{{.Role}}** was **not approved** this time. You are welcome to apply again next semester.{{end}}

Submitted on {{.SubmittedAt}}.
`)),
	"deadline_reminder": textTemplate.Must(textTemplate.New("deadline_reminder").Parse(
		`Hi {{.UserName}},

These tasks are due soon:

{{range .Tasks}}- **{{.Title}}** due {{.Deadline}}
{{end}}
Open your dashboard to mark them completed.
`)),
}

// Service renders markdown templates to HTML and hands them to a Sender.
type Service struct {
	sender   Sender
	fromName string
}

func NewService(sender Sender, fromName string) *Service {
	if sender == nil {
		sender = LogSender{}
	}
	return &Service{sender: sender, fromName: fromName}
}

// Render produces the text and HTML versions of a templated email.
func (s *Service) Render(templateName, title string, data interface{}) (text, html string, err error) {
	tmpl, ok := bodies[templateName]
	if !ok {
		return "", "", fmt.Errorf("template not found: %s", templateName)
	}

	var md bytes.Buffer
	if err := tmpl.Execute(&md, data); err != nil {
		return "", "", fmt.Errorf("template execution error: %w", err)
	}

	var body bytes.Buffer
	if err := mdRenderer.Convert(md.Bytes(), &body); err != nil {
		return "", "", fmt.Errorf("markdown render error: %w", err)
	}

	var page bytes.Buffer
	if err := layout.Execute(&page, map[string]interface{}{
		"Title": title,
		"Body":  template.HTML(body.String()),
		"From":  s.fromName,
	}); err != nil {
		return "", "", fmt.Errorf("layout execution error: %w", err)
	}
	return md.String(), page.String(), nil
}

func (s *Service) SendWithTemplate(ctx context.Context, to []string, subject, templateName string, data interface{}) error {
	text, html, err := s.Render(templateName, subject, data)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, &Message{To: to, Subject: subject, HTML: html, Text: text})
}

// ============================================
// Convenience Methods
// ============================================

type MemberDecisionData struct {
	FullName    string
	Role        string
	Approved    bool
	SubmittedAt string
}

func (s *Service) SendMemberDecision(ctx context.Context, to string, data MemberDecisionData) error {
	subject := "[ACM] Your membership request was not approved"
	if data.Approved {
		subject = "[ACM] Your membership request was approved"
	}
	return s.SendWithTemplate(ctx, []string{to}, subject, "member_decision", data)
}

type DeadlineReminderTask struct {
	Title    string
	Deadline string
}

type DeadlineReminderData struct {
	UserName string
	Tasks    []DeadlineReminderTask
}

func (s *Service) SendDeadlineReminder(ctx context.Context, to string, data DeadlineReminderData) error {
	return s.SendWithTemplate(ctx, []string{to}, "[ACM] Task deadline reminder", "deadline_reminder", data)
}

// ============================================
// Async Email Queue (simple in-memory)
// ============================================

// Queue sends emails from background workers so handlers never wait on the
// provider. Failed sends are retried with a growing delay.
type Queue struct {
	service *Service
	queue   chan *queuedEmail
	done    chan struct{}
	backoff time.Duration
}

type queuedEmail struct {
	to           []string
	subject      string
	templateName string
	data         interface{}
	retries      int
}

const maxRetries = 3

func NewQueue(service *Service, workers int) *Queue {
	q := &Queue{
		service: service,
		queue:   make(chan *queuedEmail, 1000),
		done:    make(chan struct{}),
		backoff: 2 * time.Second,
	}
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

func (q *Queue) worker() {
	for {
		select {
		case email := <-q.queue:
			err := q.service.SendWithTemplate(context.Background(), email.to, email.subject, email.templateName, email.data)
			if err == nil {
				continue
			}
			log.Printf("[Email] ❌ Send error (attempt %d): %v", email.retries+1, err)
			if email.retries < maxRetries {
				email.retries++
				go q.retry(email, q.backoff*time.Duration(email.retries))
			}
		case <-q.done:
			return
		}
	}
}

func (q *Queue) retry(email *queuedEmail, delay time.Duration) {
	select {
	case <-time.After(delay):
		q.push(email)
	case <-q.done:
	}
}

func (q *Queue) push(email *queuedEmail) {
	select {
	case q.queue <- email:
	case <-q.done:
	default:
		log.Printf("[Email] ⚠️ Queue full, dropped %q to %s", email.subject, strings.Join(email.to, ", "))
	}
}

func (q *Queue) Enqueue(to []string, subject, templateName string, data interface{}) {
	q.push(&queuedEmail{to: to, subject: subject, templateName: templateName, data: data})
}

func (q *Queue) EnqueueMemberDecision(to string, data MemberDecisionData) {
	subject := "[ACM] Your membership request was not approved"
	if data.Approved {
		subject = "[ACM] Your membership request was approved"
	}
	q.Enqueue([]string{to}, subject, "member_decision", data)
}

func (q *Queue) EnqueueDeadlineReminder(to string, data DeadlineReminderData) {
	q.Enqueue([]string{to}, "[ACM] Task deadline reminder", "deadline_reminder", data)
}

// Stop stops the workers. Queued emails are dropped.
func (q *Queue) Stop() {
	close(q.done)
}
