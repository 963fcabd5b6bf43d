package mailer

import (
	"context"
	"fmt"
	"strings"

	"ayah/pkg/outbound"
)

// Resend sends through the Resend REST API.
type Resend struct {
	baseURL string
	apiKey  string
	http    *outbound.Client
}

func NewResend(baseURL, apiKey string, client *outbound.Client) *Resend {
	return &Resend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

func (r *Resend) Name() string { return "resend" }

func (r *Resend) Send(ctx context.Context, msg Message) error {
	resp, err := r.http.Do(ctx, outbound.Request{
		Method: "POST",
		URL:    r.baseURL + "/emails",
		Headers: map[string]string{
			"Authorization": "Bearer " + r.apiKey,
		},
		Body: resendEmail{
			From:    msg.From,
			To:      []string{msg.To},
			Subject: msg.Subject,
			HTML:    msg.HTML,
			Text:    msg.Text,
		},
	})
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	if !resp.OK() {
		return &ProviderError{Provider: "Resend", Status: resp.Status, Body: string(resp.Body)}
	}
	return nil
}
