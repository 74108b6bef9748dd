package mailer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m...)
	return nil
}

func TestSendAlert(t *testing.T) {
	sender := &recordingSender{}
	svc := NewEmailServiceWithSender(sender, "alerts@broker.test", "Broker", []string{"ops@broker.test"})

	require.NoError(t, svc.SendAlert("Unknown account", map[string]interface{}{"correlationId": "<c-1>"}))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"[freight-broker] Unknown account"}, msg.GetHeader("Subject"))
	assert.Equal(t, []string{"ops@broker.test"}, msg.GetHeader("To"))
}

func TestRenderAlertEscapesAndSorts(t *testing.T) {
	body := renderAlert("Stale <refund>", map[string]interface{}{"b": "<x>", "a": 1})

	assert.Contains(t, body, "Stale &lt;refund&gt;")
	assert.Contains(t, body, "&lt;x&gt;")
	assert.Less(t, strings.Index(body, "<b>a</b>"), strings.Index(body, "<b>b</b>"))
}

func TestSendAlertWithoutRecipients(t *testing.T) {
	sender := &recordingSender{}
	svc := NewEmailServiceWithSender(sender, "alerts@broker.test", "Broker", nil)

	require.NoError(t, svc.SendAlert("x", nil))
	assert.Empty(t, sender.sent)
}

func TestSendAlertError(t *testing.T) {
	svc := NewEmailServiceWithSender(&recordingSender{err: errors.New("dial tcp")}, "a@b", "B", []string{"ops@b"})
	assert.Error(t, svc.SendAlert("x", nil))
}
