package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"ayah/internal/models"
)

var contactText = texttemplate.Must(texttemplate.New("contact").Parse(
	`Name: {{.Name}}
Email: {{.Email}}
Lang: {{.Lang}}

Message:
{{.Message}}`))

var contactHTML = htmltemplate.Must(htmltemplate.New("contact").Parse(`
<div style="font-family:system-ui, -apple-system, Segoe UI, Roboto, Arial">
  <h2>New contact submission</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Lang:</strong> {{.Lang}}</p>
  <p><strong>Message:</strong></p>
  <pre style="white-space:pre-wrap">{{.Message}}</pre>
</div>
`))

var trialText = texttemplate.Must(texttemplate.New("trial").Parse(
	`Name: {{.Name}}
Email: {{.Email}}
Phone: {{.Phone}}
Child age: {{.ChildAge}}
Lang: {{.Lang}}
{{if .Message}}
Message:
{{.Message}}{{end}}`))

var trialHTML = htmltemplate.Must(htmltemplate.New("trial").Parse(`
<div style="font-family:system-ui, -apple-system, Segoe UI, Roboto, Arial">
  <h2>New free trial request</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Phone:</strong> {{.Phone}}</p>
  <p><strong>Child age:</strong> {{.ChildAge}}</p>
  <p><strong>Lang:</strong> {{.Lang}}</p>
  {{if .Message}}<p><strong>Message:</strong></p>
  <pre style="white-space:pre-wrap">{{.Message}}</pre>{{end}}
</div>
`))

var orderText = texttemplate.Must(texttemplate.New("order").Parse(
	`Thank you for your order / شكراً لطلبك

Order: {{.OrderID}}
Date: {{.Timestamp.Format "2006-01-02 15:04 MST"}}
{{range .Items}}
- {{.Name}} x{{.Quantity}}: ${{printf "%.2f" .Price}}{{end}}

Total: ${{printf "%.2f" .TotalPrice}}`))

var orderHTML = htmltemplate.Must(htmltemplate.New("order").Parse(`
<div style="font-family:system-ui, -apple-system, Segoe UI, Roboto, Arial">
  <h2>Thank you for your order</h2>
  <h2 dir="rtl">شكراً لطلبك</h2>
  <p><strong>Order:</strong> {{.OrderID}}</p>
  <ul>
  {{range .Items}}<li>{{.Name}} x{{.Quantity}}: ${{printf "%.2f" .Price}}</li>
  {{end}}</ul>
  <p><strong>Total:</strong> ${{printf "%.2f" .TotalPrice}}</p>
</div>
`))

func render(text *texttemplate.Template, html *htmltemplate.Template, data interface{}) (string, string, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", text.Name(), err)
	}
	if err := html.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", html.Name(), err)
	}
	return tb.String(), hb.String(), nil
}

func langOrDefault(l models.Lang) models.Lang {
	if l == "" {
		return models.LangEnglish
	}
	return l
}

// ContactMessage builds the email relayed for a contact form submission.
func ContactMessage(req models.ContactRequest, from, to string) (Message, error) {
	req.Lang = langOrDefault(req.Lang)
	text, html, err := render(contactText, contactHTML, req)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      to,
		Subject: "New contact from " + req.Name,
		Text:    text,
		HTML:    html,
	}, nil
}

// TrialMessage builds the email relayed for a free-trial request.
func TrialMessage(req models.TrialRequest, from, to string) (Message, error) {
	req.Lang = langOrDefault(req.Lang)
	text, html, err := render(trialText, trialHTML, req)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      to,
		Subject: "New free trial request from " + req.Name,
		Text:    text,
		HTML:    html,
	}, nil
}

// OrderConfirmationMessage builds the receipt sent to the order's email.
func OrderConfirmationMessage(order *models.Order, from string) (Message, error) {
	text, html, err := render(orderText, orderHTML, order)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      order.Email,
		Subject: "Your Ayah order " + order.OrderID,
		Text:    text,
		HTML:    html,
	}, nil
}
