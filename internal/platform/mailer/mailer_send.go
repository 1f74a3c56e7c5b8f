package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendBookingConfirmation(toEmail, toName, tableName, startAt, duration, manageToken string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("Your table is booked: %s", tableName)
	html := fmt.Sprintf(`
		<h2>Booking confirmed</h2>
		<p>Hi %s,</p>
		<p>We've reserved <strong>%s</strong> for you.</p>
		<p>Start: <strong>%s</strong><br>Duration: <strong>%s</strong></p>
		<p>Manage your booking with this code: <strong>%s</strong></p>
		<p>See you at the club!</p>
	`, toName, tableName, startAt, duration, manageToken)

	text := fmt.Sprintf("Booking confirmed for %s.\nStart: %s\nDuration: %s\nManage code: %s",
		tableName, startAt, duration, manageToken)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendReceipt(toEmail, toName, tableName, billedDuration, subtotal, tax, total string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("Your receipt for %s", tableName)
	html := fmt.Sprintf(`
		<h2>Thanks for playing, %s!</h2>
		<p>Table: <strong>%s</strong><br>Time billed: <strong>%s</strong></p>
		<table>
			<tr><td>Subtotal</td><td>%s</td></tr>
			<tr><td>Tax</td><td>%s</td></tr>
			<tr><td><strong>Total</strong></td><td><strong>%s</strong></td></tr>
		</table>
	`, toName, tableName, billedDuration, subtotal, tax, total)

	text := fmt.Sprintf("Receipt for %s\nTime billed: %s\nSubtotal: %s\nTax: %s\nTotal: %s",
		tableName, billedDuration, subtotal, tax, total)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
