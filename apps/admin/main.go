package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/report"
	"github.com/trezcool/ams/core/user"
	emailsvc "github.com/trezcool/ams/services/email"
	logsvc "github.com/trezcool/ams/services/logger"
	"github.com/trezcool/ams/services/records/httpapi"
	"github.com/trezcool/ams/services/records/localapi"
	"github.com/trezcool/ams/storage/database"
	sqlxrepos "github.com/trezcool/ams/storage/database/sqlx"
	"github.com/trezcool/ams/storage/kv"
)

func main() {
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))

	var mailSvc core.EmailService
	if core.Conf.GetBool("debug") {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	cli := commandLine{
		out:    os.Stdout,
		mailer: report.NewResultsMailer(mailSvc),
		logger: logger,
	}

	// set up DB
	if url := core.Conf.GetString("databaseURL"); url != "" {
		db, err := database.Open(context.Background(), url)
		if err != nil {
			logger.Fatal("opening database", err)
		}
		defer db.Close()

		cli.api = sqlxrepos.NewRecordsAPI(db)
		cli.usrSvc = user.NewService(sqlxrepos.NewUserRepository(db))
		cli.migrate = func(command string, args ...string) error {
			return database.Migrate(db.DB, command, args...)
		}
	}

	// a configured Records API takes precedence over the database
	var api record.API
	if core.APIBaseURL() != "" {
		store, err := kv.OpenBolt(core.Conf.GetString("sessionDBPath"))
		if err != nil {
			logger.Fatal("opening session store", err)
		}
		defer store.Close()

		var session *user.Session
		client := httpapi.NewFromConfig(httpapi.WithToken(func() string { return session.Token() }))
		session = user.NewSession(store, client, logger)
		cli.session = session
		api = client
	} else if cli.api == nil {
		api = localapi.New()
	}
	if api != nil {
		cli.api = api
	}

	err := cli.run(os.Args)
	if w, ok := mailSvc.(interface{ Wait() }); ok {
		w.Wait() // queued results emails
	}
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
