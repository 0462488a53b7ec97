package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/ams/apps/api/echo"
	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
	logsvc "github.com/trezcool/ams/services/logger"
	"github.com/trezcool/ams/storage/database"
	dummydb "github.com/trezcool/ams/storage/database/dummy"
	sqlxrepos "github.com/trezcool/ams/storage/database/sqlx"
)

const shutdownTimeout = 10 * time.Second

// The dev Records API. Serves Postgres when databaseURL is set, an in-memory
// store otherwise.
func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))

	var (
		api     record.API
		userSvc *user.Service
	)
	if url := core.Conf.GetString("databaseURL"); url != "" {
		db, err := setUpDB(url)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database", err)
			}
		}()
		api = sqlxrepos.NewRecordsAPI(db)
		userSvc = user.NewService(sqlxrepos.NewUserRepository(db))
	} else {
		db, err := dummydb.Open(dummydb.Options{
			Subjects: record.DefaultSubjects(),
			Teachers: record.DefaultTeachers(),
			Courses:  record.SeedCourses(),
		})
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up memory store: %v", err), err)
		}
		api = dummydb.NewRecordsAPI(db)
		userSvc = user.NewService(dummydb.NewUserRepository(db))
	}

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : %s", core.Conf.GetString("nodeEnv")))
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:     core.Conf.GetString("serverAddress"),
		RequireAuth: core.Conf.GetBool("serverRequireAuth"),
		API:         api,
		UserSvc:     userSvc,
		Logger:      logger,
		Shutdown:    func() { shutdown <- syscall.SIGTERM },
	})
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)
		}
		return
	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	}

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(url string) (*sqlx.DB, error) {
	db, err := database.Open(context.Background(), url)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
