package mailer

import (
	"context"
	"fmt"
	"strings"

	"ayah/pkg/outbound"
)

// SendGrid sends through the SendGrid v3 mail API.
type SendGrid struct {
	baseURL string
	apiKey  string
	http    *outbound.Client
}

func NewSendGrid(baseURL, apiKey string, client *outbound.Client) *SendGrid {
	return &SendGrid{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridMail struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

func (s *SendGrid) Name() string { return "sendgrid" }

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	mail := sendGridMail{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: msg.To}}},
		},
		From:    sendGridAddress{Email: msg.From},
		Subject: msg.Subject,
		Content: []sendGridContent{
			{Type: "text/plain", Value: msg.Text},
			{Type: "text/html", Value: msg.HTML},
		},
	}

	resp, err := s.http.Do(ctx, outbound.Request{
		Method: "POST",
		URL:    s.baseURL + "/v3/mail/send",
		Headers: map[string]string{
			"Authorization": "Bearer " + s.apiKey,
		},
		Body: mail,
	})
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if !resp.OK() {
		return &ProviderError{Provider: "SendGrid", Status: resp.Status, Body: string(resp.Body)}
	}
	return nil
}
