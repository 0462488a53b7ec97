package main

import (
	"context"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/apps/dashboard"
	"github.com/trezcool/ams/core/report"
)

type resultsOptions struct {
	examID    string
	class     string
	section   string
	subjectID string
	mailTo    string
}

// results prints the results of a class section as CSV, and mails the overall
// table when recipients are given.
func (cli *commandLine) results(opts resultsOptions) error {
	ctx := context.Background()
	view, err := cli.dashboard().Results(ctx)
	if err != nil {
		return err
	}
	err = view.SetFilter(ctx, dashboard.SectionFilter{
		Class:     opts.class,
		Section:   opts.section,
		ExamID:    opts.examID,
		SubjectID: opts.subjectID,
	})
	if err != nil {
		return err
	}

	if opts.subjectID != "" {
		return report.WriteCSV(cli.out, report.SubjectTable(view.SubjectRows()))
	}

	rows := view.OverallRows()
	if err := report.WriteCSV(cli.out, report.OverallTable(rows)); err != nil {
		return err
	}
	if opts.mailTo == "" {
		return nil
	}

	to, err := parseRecipients(opts.mailTo)
	if err != nil {
		return err
	}
	return cli.mailer.Send(to, examName(view, opts.examID), opts.examID, rows)
}

// parseRecipients parses a comma-separated RFC 5322 address list.
func parseRecipients(list string) ([]mail.Address, error) {
	addrs, err := mail.ParseAddressList(list)
	if err != nil {
		return nil, errors.Wrap(err, "parsing recipients")
	}
	to := make([]mail.Address, 0, len(addrs))
	for _, a := range addrs {
		to = append(to, *a)
	}
	return to, nil
}

func examName(view *dashboard.ResultsView, examID string) string {
	for _, e := range view.Exams() {
		if e.ID == examID {
			return strings.TrimSpace(e.Name)
		}
	}
	return ""
}
