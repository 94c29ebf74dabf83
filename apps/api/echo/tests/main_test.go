package tests

import (
	"log"
	"os"
	"testing"

	. "github.com/wkarobia/cantera/apps/api/echo"
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
	"github.com/wkarobia/cantera/storage/database/inmem"
)

var (
	db  *inmem.DB
	app Server

	usrRepo   user.Repository
	stuRepo   student.Repository
	grpRepo   group.Repository
	payRepo   payment.Repository
	noteRepo  note.Repository
	notifRepo notification.Repository
	trainRepo training.Repository

	settingsStore *settings.Store

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	// set up DB & repos
	db = inmem.NewDB()
	usrRepo = inmem.NewUserRepository(db)
	stuRepo = inmem.NewStudentRepository(db)
	grpRepo = inmem.NewGroupRepository(db)
	payRepo = inmem.NewPaymentRepository(db)
	noteRepo = inmem.NewNoteRepository(db)
	notifRepo = inmem.NewNotificationRepository(db)
	trainRepo = inmem.NewTrainingRepository(db)

	// set up services
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc := emailsvc.NewConsoleServiceMock()
	smsSvc := smssvc.NewConsoleServiceMock()

	usrSvc := user.NewService(usrRepo)
	stuSvc := student.NewService(db, stuRepo)
	grpSvc := group.NewService(grpRepo)
	paySvc := payment.NewService(payRepo)
	noteSvc := note.NewService(noteRepo)
	notifSvc := notification.NewService(notifRepo, mailSvc, smsSvc, logger)
	trainSvc := training.NewService(trainRepo)
	settingsStore = settings.NewStore(core.Conf)

	// set up server
	app = NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			SignalShutdown: func() {},

			UserSvc:         usrSvc,
			StudentSvc:      stuSvc,
			GroupSvc:        grpSvc,
			PaymentSvc:      paySvc,
			NoteSvc:         noteSvc,
			NotificationSvc: notifSvc,
			TrainingSvc:     trainSvc,
			Settings:        settingsStore,
			EmailSvc:        mailSvc,
			SMSSvc:          smsSvc,
		},
	)

	os.Exit(m.Run())
}

func resetDB(t *testing.T) {
	t.Helper()
	db.Reset()
	emailsvc.ClearSentMessages()
	smssvc.ClearSentMessages()
}
