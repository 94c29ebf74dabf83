package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/group"
	"github.com/wkarobia/cantera/core/note"
	"github.com/wkarobia/cantera/core/notification"
	"github.com/wkarobia/cantera/core/payment"
	"github.com/wkarobia/cantera/core/settings"
	"github.com/wkarobia/cantera/core/student"
	"github.com/wkarobia/cantera/core/training"
	"github.com/wkarobia/cantera/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger
		SignalShutdown func()

		UserSvc         *user.Service
		StudentSvc      *student.Service
		GroupSvc        *group.Service
		PaymentSvc      *payment.Service
		NoteSvc         *note.Service
		NotificationSvc *notification.Service
		TrainingSvc     *training.Service
		Settings        *settings.Store
		EmailSvc        core.EmailService
		SMSSvc          core.SMSService
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(cookieTokenMiddleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(api, s.opts.UserSvc)
	registerUserAPI(api, jwt, s.opts.UserSvc)
	registerStudentAPI(api, jwt, s.opts.StudentSvc)
	registerGroupAPI(api, jwt, s.opts.GroupSvc, s.opts.StudentSvc)
	registerPaymentAPI(api, jwt, s.opts.PaymentSvc)
	registerNoteAPI(api, jwt, s.opts.NoteSvc, s.opts.UserSvc)
	registerNotificationAPI(api, jwt, s.opts.NotificationSvc)
	registerTrainingAPI(api, jwt, s.opts.TrainingSvc)
	registerSearchAPI(api, jwt, s.opts.StudentSvc, s.opts.GroupSvc, s.opts.PaymentSvc, s.opts.TrainingSvc)
	registerHealthAPI(api, jwt, s.opts)
	registerSettingsAPI(api, jwt, s.opts.Settings, s.opts.EmailSvc, s.opts.SMSSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
