package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scorebook/core"
)

func testConfig() *core.Config {
	conf := &core.Config{AppName: "Scorebook"}
	conf.DefaultFromEmail = mail.Address{Name: "Scorebook", Address: "noreply@test.local"}
	return conf
}

func TestConsoleService_SendMessages(t *testing.T) {
	out := new(bytes.Buffer)
	svc := NewConsoleService(testConfig(), out)

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: "Ahmet", Address: "ahmet@test.local"}},
		Subject:      "Backup",
		TemplateName: "backup",
		TemplateData: map[string]interface{}{
			"Name":     "Ahmet",
			"TakenAt":  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			"Classes":  2,
			"Students": 31,
			"Criteria": 6,
		},
	}
	require.NoError(t, msg.Attach(strings.NewReader(`{"classes":[]}`), "backup.json", "application/json"))

	noRecipient := &core.EmailMessage{Subject: "lost", BodyStr: "nobody reads this"}
	require.NoError(t, svc.SendMessages(msg, noRecipient))

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Hello Ahmet,")
	assert.Contains(t, sent[0].TextContent, "2024-05-01 09:00 UTC")
	assert.Contains(t, sent[0].TextContent, "Students: 31")
	assert.Contains(t, sent[0].TextContent, "-- Scorebook")

	printed := out.String()
	assert.Contains(t, printed, "Subject: [Scorebook] Backup")
	assert.Contains(t, printed, `To: "Ahmet" <ahmet@test.local>`)
	assert.Contains(t, printed, "filename=backup.json")
	assert.Contains(t, printed, "eyJjbGFzc2VzIjpbXX0=") // base64 of the attachment
}

func TestConsoleService_unknownTemplate(t *testing.T) {
	svc := NewConsoleService(testConfig(), nil)
	err := svc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: "a@test.local"}},
		TemplateName: "lol",
	})
	assert.Error(t, err)
	assert.Empty(t, svc.Sent())
}
