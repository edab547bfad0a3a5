package email

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender; from is "Name <address>" or a bare address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg *Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("[Email] ❌ Resend send failed to=%s: %v", strings.Join(msg.To, ", "), err)
		return fmt.Errorf("resend send failed: %w", err)
	}

	log.Printf("[Email] ✅ Sent %q to %s (id=%s)", msg.Subject, strings.Join(msg.To, ", "), sent.Id)
	return nil
}
