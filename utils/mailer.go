package utils

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// Embedded email templates
var emailTemplates = map[string]string{
	"contact_notification": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Contact Inquiry</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .field { margin: 10px 0; }
        .label { font-weight: bold; color: #7f8c8d; }
        .message { background: #f8f9fa; padding: 15px; border-radius: 4px; margin-top: 15px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>New Contact Inquiry #{{.TicketID}}</h2>
    </div>
    <div class="field"><span class="label">Name:</span> {{.Name}}</div>
    <div class="field"><span class="label">Email:</span> {{.Email}}</div>
    <div class="field"><span class="label">Phone:</span> {{.Phone}}</div>
    <div class="field"><span class="label">Service:</span> {{.Service}}</div>
    <div class="message">{{.Message}}</div>
    <div class="footer">
        <p>Submitted through the website contact form.</p>
    </div>
</body>
</html>`,

	"ticket_reply": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; white-space: pre-line; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Prime UAE Services</h2>
    </div>
    <div class="content">
        <p>Dear {{.CustomerName}},</p>
        <p>{{.Message}}</p>
    </div>
    <div class="footer">
        <p>Prime UAE Services - Visa &amp; PRO Services</p>
        <p>If you have further questions, simply reply to this email.</p>
    </div>
</body>
</html>`,

	"daily_digest": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Daily Report</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        table { border-collapse: collapse; width: 100%; margin: 20px 0; }
        td, th { border: 1px solid #eee; padding: 8px; text-align: left; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Daily Report - {{.Date}}</h2>
    </div>
    <table>
        <tr><th>New tickets</th><td>{{.NewTickets}}</td></tr>
        <tr><th>Open tickets</th><td>{{.OpenTickets}}</td></tr>
        <tr><th>Emails delivered</th><td>{{.Delivered}}</td></tr>
        <tr><th>Emails bounced</th><td>{{.Bounced}}</td></tr>
        <tr><th>Spam complaints</th><td>{{.Complaints}}</td></tr>
    </table>
    <div class="footer">
        <p>Automated report from the Prime UAE Services back office.</p>
    </div>
</body>
</html>`,
}

// RenderEmailTemplate renders one of the embedded templates with data.
func RenderEmailTemplate(name string, data interface{}) (string, error) {
	tmplContent, ok := emailTemplates[name]
	if !ok {
		return "", fmt.Errorf("template '%s' not found", name)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("error parsing template: %v", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("error executing template: %v", err)
	}
	return body.String(), nil
}

// SMTPMailer sends internal mail (daily digests) over plain SMTP rather than
// through the transactional provider, so reports keep flowing even when the
// provider account has issues.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

// Configured reports whether the mailer has enough settings to dial.
func (m *SMTPMailer) Configured() bool {
	return m != nil && m.Host != "" && m.From != ""
}

// Send renders the named template and delivers it to the recipients.
func (m *SMTPMailer) Send(to []string, subject, templateName string, data interface{}) error {
	if !m.Configured() {
		return fmt.Errorf("smtp mailer not configured")
	}

	body, err := RenderEmailTemplate(templateName, data)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	return nil
}
