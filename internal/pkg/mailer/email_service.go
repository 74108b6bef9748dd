package mailer

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"gopkg.in/gomail.v2"
)

// IEmailService delivers operator alerts.
type IEmailService interface {
	SendAlert(subject string, details map[string]interface{}) error
}

type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender      Sender
	senderEmail string
	senderName  string
	recipients  []string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string, recipients []string) IEmailService {
	return NewEmailServiceWithSender(gomail.NewDialer(host, port, username, password), senderEmail, senderName, recipients)
}

func NewEmailServiceWithSender(sender Sender, senderEmail, senderName string, recipients []string) IEmailService {
	return &emailService{
		sender:      sender,
		senderEmail: senderEmail,
		senderName:  senderName,
		recipients:  recipients,
	}
}

func (s *emailService) SendAlert(subject string, details map[string]interface{}) error {
	if len(s.recipients) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", s.recipients...)
	m.SetHeader("Subject", "[freight-broker] "+subject)
	m.SetBody("text/html", renderAlert(subject, details))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert %q: %w", subject, err)
	}
	return nil
}

func renderAlert(subject string, details map[string]interface{}) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&rows, `<tr><td style="padding: 4px 12px 4px 0;"><b>%s</b></td><td>%s</td></tr>`,
			html.EscapeString(k), html.EscapeString(fmt.Sprint(details[k])))
	}

	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<table>%s</table>
		</div>
	`, html.EscapeString(subject), rows.String())
}
