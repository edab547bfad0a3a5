package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingSender struct {
	mu       sync.Mutex
	failures int
	sent     []*Message
	attempts int
}

func (r *recordingSender) Send(ctx context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.attempts <= r.failures {
		return errors.New("provider unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestRenderMemberDecision(t *testing.T) {
	svc := NewService(nil, "ACM BVCOE")

	text, html, err := svc.Render("member_decision", "Decision", MemberDecisionData{
		FullName:    "Priya Nair",
		Role:        "core-member",
		Approved:    true,
		SubmittedAt: "Mar 15, 2025",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "**approved**") {
		t.Fatalf("markdown body missing decision: %q", text)
	}
	if !strings.Contains(html, "<strong>approved</strong>") || !strings.Contains(html, "ACM BVCOE") {
		t.Fatalf("html body not rendered: %q", html)
	}
}

func TestRenderEscapesRawHTML(t *testing.T) {
	svc := NewService(nil, "ACM BVCOE")

	_, html, err := svc.Render("member_decision", "Decision", MemberDecisionData{FullName: "<script>alert(1)</script>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("raw html leaked into the email: %q", html)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, _, err := NewService(nil, "").Render("nope", "", nil); err == nil {
		t.Fatal("expected an error for an unknown template")
	}
}

func TestSendDeadlineReminder(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "ACM BVCOE")

	err := svc.SendDeadlineReminder(context.Background(), "a@b.c", DeadlineReminderData{
		UserName: "Asha",
		Tasks:    []DeadlineReminderTask{{Title: "Website Redesign", Deadline: "Mar 20, 2025"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := sender.sent[0]
	if msg.To[0] != "a@b.c" || !strings.Contains(msg.HTML, "Website Redesign") {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestQueueRetries(t *testing.T) {
	sender := &recordingSender{failures: 2}
	q := NewQueue(NewService(sender, "ACM BVCOE"), 1)
	q.backoff = time.Millisecond
	defer q.Stop()

	q.EnqueueMemberDecision("a@b.c", MemberDecisionData{FullName: "Karan", Approved: false})

	deadline := time.Now().Add(2 * time.Second)
	for sender.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("email was never delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(sender.sent[0].Subject, "not approved") {
		t.Fatalf("unexpected subject: %q", sender.sent[0].Subject)
	}
}
