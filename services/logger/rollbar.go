package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/user"
)

// RollbarLogger mirrors everything to the std logger and reports to Rollbar.
// A user.User anywhere in the args is attached as the acting person instead of
// being logged as data.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.AppName)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l *RollbarLogger) Enable(enabled bool) { rollbar.SetEnabled(enabled) }

func (l *RollbarLogger) report(level, msg string, args []interface{}) {
	data := make([]interface{}, 0, len(args)+1)
	data = append(data, msg)

	person := false
	for _, arg := range args {
		usr, ok := arg.(user.User)
		if ok && !person {
			rollbar.SetPerson(usr.ID, usr.Username, usr.Email)
			person = true
			continue
		}
		data = append(data, arg)
	}
	if !person {
		rollbar.ClearPerson()
	}

	rollbar.Log(level, data...)

	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.report(rollbar.DEBUG, msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.report(rollbar.INFO, msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.WARN, msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.ERR, msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
