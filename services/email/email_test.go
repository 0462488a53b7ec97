package emailsvc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ams/core"
)

type nopLogger struct{}

func (l nopLogger) Debug(msg string, args ...interface{}) {}
func (l nopLogger) Info(msg string, args ...interface{})  {}
func (l nopLogger) Warn(msg string, args ...interface{})  {}
func (l nopLogger) Error(msg string, args ...interface{}) {}
func (l nopLogger) Fatal(msg string, args ...interface{}) {}

func newResultsMessage(t *testing.T) *core.EmailMessage {
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: "Head", Address: "head@school.test"}},
		Subject: "Results",
		BodyStr: "See attached.",
	}
	if err := msg.Attach(strings.NewReader(`"a","b"`), "results.csv", "text/csv"); err != nil {
		t.Fatalf("Attach() failed: %v", err)
	}
	return msg
}

func TestConsoleService(t *testing.T) {
	svc := NewConsoleServiceMock()
	out := new(bytes.Buffer)
	svc.out = out

	svc.SendMessages(
		newResultsMessage(t),
		&core.EmailMessage{Subject: "no recipients", BodyStr: "x"},
		&core.EmailMessage{To: []mail.Address{{Address: "a@b.co"}}, Subject: "empty"},
	)

	sent := svc.Sent()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "See attached.", sent[0].TextContent)
	}
	assert.Contains(t, out.String(), "Subject: [AMS] Results\r\n")
	assert.Contains(t, out.String(), "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, out.String(), `attachment; filename="results.csv"`)
	assert.Contains(t, out.String(), "ImEiLCJiIg==") // base64 of "a","b"
}

func TestSendgridService_send(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		if r.URL.Path != endpoint {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	svc := NewSendgridService(nopLogger{})
	svc.key = "SG.key"
	svc.host = srv.URL

	msg := newResultsMessage(t)
	assert.NoError(t, msg.Render())
	assert.NoError(t, svc.send(*msg))
	assert.Equal(t, "Bearer SG.key", gotAuth)

	pers := gotBody["personalizations"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "[AMS] Results", pers["subject"])
	attachments := gotBody["attachments"].([]interface{})
	assert.Equal(t, "results.csv", attachments[0].(map[string]interface{})["filename"])
	content := gotBody["content"].([]interface{})
	assert.Len(t, content, 1)
}

func TestSendgridService_sendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewSendgridService(nopLogger{})
	svc.host = srv.URL
	msg := newResultsMessage(t)
	assert.NoError(t, msg.Render())
	assert.Error(t, svc.send(*msg))
}
