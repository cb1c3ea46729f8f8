package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMultipartAlternative(t *testing.T) {
	raw, err := Build("noreply@stockx.test", Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "New User Signup",
		HTML:    "<p>Hello</p>",
		Text:    "Hello",
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "From: noreply@stockx.test\r\n")
	assert.Contains(t, s, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, s, "MIME-Version: 1.0\r\n")
	assert.Contains(t, s, "Content-Type: multipart/alternative; boundary=")
	assert.Contains(t, s, "text/plain; charset=UTF-8")
	assert.Contains(t, s, "text/html; charset=UTF-8")
	assert.Less(t, strings.Index(s, "Hello\r\n"), strings.Index(s, "<p>Hello</p>"), "plain part precedes html")
}

func TestBuildEncodesNonASCIISubject(t *testing.T) {
	raw, err := Build("x@y.z", Message{To: []string{"a@b.c"}, Subject: "🔔 Pending", Text: "t"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: =?utf-8?q?")
	assert.NotContains(t, string(raw), "text/html")
}

func TestSendRejectsIncompleteMessages(t *testing.T) {
	m := New(Config{Host: "localhost", Port: 25, Username: "user@example.com"})
	assert.Error(t, m.Send(context.Background(), Message{Subject: "s"}))
	assert.Error(t, m.Send(context.Background(), Message{To: []string{"a@b.c"}}))

	unconfigured := New(Config{})
	assert.Error(t, unconfigured.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "s"}))
}
