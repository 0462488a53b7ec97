package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/ams/apps/dashboard"
	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/report"
	"github.com/trezcool/ams/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp       = errors.New("help provided")
	errNoDatabase = errors.New("no database configured (set databaseURL)")
	errNoAPI      = errors.New("no Records API configured (set apiBaseURL)")
)

type commandLine struct {
	out    io.Writer
	api    record.API
	usrSvc *user.Service // nil without a database
	mailer *report.ResultsMailer
	// migrate runs a goose command, nil without a database.
	migrate func(command string, args ...string) error
	// session signs in to a remote Records API, nil without one.
	session *user.Session
	logger  core.Logger
}

// dashboard gates pages with the session when signed in to a remote API.
func (cli *commandLine) dashboard() *dashboard.Dashboard {
	return dashboard.New(cli.api, dashboard.Options{Session: cli.session, Logger: cli.logger})
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  health - check the Records API")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL [-name NAME] [-admin] - create or update a user")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  results -exam ID -class CLASS [-section SECTION] [-subject ID] [-mailto EMAILS] - export results as CSV")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status...)")
	fmt.Fprintln(cli.out, "  login -email EMAIL - sign in to the Records API")
	fmt.Fprintln(cli.out, "  logout - sign out")
	fmt.Fprintln(cli.out, "  whoami - show the signed in user")
}

// promptPassword reads a password without echoing it; an empty one shows usage.
func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's name.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant the admin role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordCmd.SetOutput(cli.out)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginCmd.SetOutput(cli.out)
	loginEmail := loginCmd.String("email", "", "Your email. The password will be prompted next.")

	resultsCmd := flag.NewFlagSet("results", flag.ContinueOnError)
	resultsCmd.SetOutput(cli.out)
	resultsExam := resultsCmd.String("exam", "", "The exam ID.")
	resultsClass := resultsCmd.String("class", "", "The class.")
	resultsSection := resultsCmd.String("section", "", "The section, every section when blank.")
	resultsSubject := resultsCmd.String("subject", "", "Export one subject instead of the overall results.")
	resultsMailTo := resultsCmd.String("mailto", "", "Comma separated recipients of the overall results.")

	switch args[1] {
	case "health":
		return cli.health()

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(addUserCmd)
		if err != nil {
			return err
		}
		role := user.RoleTeacher
		if *addUserAdmin {
			role = user.RoleAdmin
		}
		return cli.addUser(*addUserName, *addUserEmail, pwd, role)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "results":
		if err := resultsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resultsExam == "" || *resultsClass == "" {
			resultsCmd.Usage()
			return errHelp
		}
		return cli.results(resultsOptions{
			examID:    *resultsExam,
			class:     *resultsClass,
			section:   *resultsSection,
			subjectID: *resultsSubject,
			mailTo:    *resultsMailTo,
		})

	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(loginCmd)
		if err != nil {
			return err
		}
		return cli.login(*loginEmail, pwd)

	case "logout":
		return cli.logout()

	case "whoami":
		return cli.whoami()

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.runMigration(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}
