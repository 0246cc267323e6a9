package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
)

const orderConfirmationTemplate = `<html>
<body>
	<p>Hi {{.Name}},</p>
	<p>Thanks for your order! Payment for order #{{.OrderID}} was received.</p>
	<p>Order total: {{printf "%.2f" .Total}}</p>
	<p>We will let you know as soon as it ships.</p>
	<p>— The Loomline team</p>
</body>
</html>`

type orderConfirmationData struct {
	Name    string
	OrderID uint
	Total   float64
}

// SendOrderConfirmation mails the customer after their payment is confirmed.
func SendOrderConfirmation(emailTo, name string, orderID uint, total float64) error {
	tmpl, err := template.New("orderConfirmation").Parse(orderConfirmationTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, orderConfirmationData{Name: name, OrderID: orderID, Total: total}); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	subject := fmt.Sprintf("Order #%d confirmed", orderID)
	message := fmt.Sprintf(
		"From: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		os.Getenv("FROM_EMAIL"),
		subject,
		body.String(),
	)

	auth := smtp.PlainAuth(
		"",
		os.Getenv("FROM_EMAIL"),
		os.Getenv("FROM_EMAIL_PASSWORD"),
		os.Getenv("FROM_EMAIL_SMTP"),
	)

	if err := smtp.SendMail(os.Getenv("SMTP_ADDRESS"), auth, os.Getenv("FROM_EMAIL"), []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
