package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wkarobia/cantera/apps/api/echo"
	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/group"
	"github.com/wkarobia/cantera/core/note"
	"github.com/wkarobia/cantera/core/notification"
	"github.com/wkarobia/cantera/core/payment"
	"github.com/wkarobia/cantera/core/settings"
	"github.com/wkarobia/cantera/core/student"
	"github.com/wkarobia/cantera/core/training"
	"github.com/wkarobia/cantera/core/user"
	"github.com/wkarobia/cantera/services/email"
	"github.com/wkarobia/cantera/services/logger"
	"github.com/wkarobia/cantera/services/sms"
	"github.com/wkarobia/cantera/storage/database"
	"github.com/wkarobia/cantera/storage/database/sqlx"
)

const shutdownTimeout = 10 * time.Second

// TODO:
// - APM/Tracing
// - CSRF
func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var appLogger core.Logger
	if core.Conf.Debug {
		appLogger = logsvc.NewStdLogger(std)
	} else {
		appLogger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up DB
	errAndDie(std, database.CreateIfNotExist(core.Conf))
	db, err := database.Open(core.Conf)
	errAndDie(std, err)
	defer func() { _ = db.Close() }()
	errAndDie(std, database.Migrate(db))

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(appLogger)
	}
	smsSvc := smssvc.NewConsoleService()

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	studentSvc := student.NewService(db, sqlxrepos.NewStudentRepository(db))
	groupSvc := group.NewService(sqlxrepos.NewGroupRepository(db))
	paymentSvc := payment.NewService(sqlxrepos.NewPaymentRepository(db))
	noteSvc := note.NewService(sqlxrepos.NewNoteRepository(db))
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), mailSvc, smsSvc, appLogger)
	trainingSvc := training.NewService(sqlxrepos.NewTrainingRepository(db))
	settingsStore := settings.NewStore(core.Conf)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:        core.Conf.Server.Address(),
			Logger:         appLogger,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },

			UserSvc:         usrSvc,
			StudentSvc:      studentSvc,
			GroupSvc:        groupSvc,
			PaymentSvc:      paymentSvc,
			NoteSvc:         noteSvc,
			NotificationSvc: notifSvc,
			TrainingSvc:     trainingSvc,
			Settings:        settingsStore,
			EmailSvc:        mailSvc,
			SMSSvc:          smsSvc,
		},
	)
	go app.Start()

	sig := <-shutdown
	std.Printf("shutting down: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		std.Printf("graceful shutdown failed: %v", err)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
