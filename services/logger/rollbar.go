package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/user"
)

// RollbarLogger reports to Rollbar and mirrors every entry to a std logger.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger configures the Rollbar client from core.Conf.
// Reporting stays off in debug mode or without a token.
func NewRollbarLogger(std *log.Logger) *RollbarLogger {
	token := core.Conf.GetString("rollbarToken")
	rollbar.SetToken(token)
	rollbar.SetEnvironment(core.Conf.GetString("nodeEnv"))
	rollbar.SetServerHost(core.Conf.GetString("serverAddress"))
	rollbar.SetCodeVersion(core.Conf.GetString("appName"))
	rollbar.SetStackTracer(errors.StackTracer)

	l := &RollbarLogger{std: std}
	l.Enable(token != "" && !core.Conf.GetBool("debug"))
	return l
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []interface{}) {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	printed := make([]interface{}, 0, len(args))
	for _, arg := range args {
		var usr *user.User
		switch a := arg.(type) {
		case user.User:
			usr = &a
		case *user.User:
			usr = a
		}
		if usr == nil {
			newArgs = append(newArgs, arg)
			printed = append(printed, arg)
			continue
		}
		if !usrSet { // only set one User
			rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
			usrSet = true
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs, printed
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, printed := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.print("DEBUG", msg, printed)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, printed := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.print("INFO", msg, printed)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, printed := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.print("WARN", msg, printed)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, printed := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.print("ERROR", msg, printed)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, printed := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	l.print("FATAL", msg, printed)
	rollbar.Wait()
	l.std.Fatal(msg)
}
