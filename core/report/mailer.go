package report

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
)

var ErrNoRecipients = errors.New("no recipients")

// ResultsMailer emails overall results as a CSV attachment.
type ResultsMailer struct {
	svc core.EmailService
}

func NewResultsMailer(svc core.EmailService) *ResultsMailer {
	return &ResultsMailer{svc: svc}
}

// Send queues one message per call; delivery is asynchronous.
func (m *ResultsMailer) Send(to []mail.Address, examName, examID string, rows []OverallRow) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	label := examName
	if label == "" {
		label = examID
	}

	msg := &core.EmailMessage{
		To:      to,
		Subject: strings.TrimSpace("Results " + label),
		BodyStr: fmt.Sprintf("Overall results for %s: %d students.", orDefault(label, "the exam"), len(rows)),
	}
	if err := msg.Attach(strings.NewReader(OverallTable(rows).CSV()), OverallFilename(examID), "text/csv"); err != nil {
		return errors.Wrap(err, "attaching results")
	}
	m.svc.SendMessages(msg)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
