package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wkarobia/cantera/core"
	"github.com/wkarobia/cantera/core/settings"
	"github.com/wkarobia/cantera/core/user"
)

type settingsApi struct {
	store    *settings.Store
	emailSvc core.EmailService
	smsSvc   core.SMSService
}

func registerSettingsAPI(g *echo.Group, jwt echo.MiddlewareFunc, store *settings.Store, emailSvc core.EmailService, smsSvc core.SMSService) {
	api := settingsApi{store: store, emailSvc: emailSvc, smsSvc: smsSvc}

	sg := g.Group("/settings", jwt, capabilityMiddleware(user.CapManageSettings))
	sg.GET("", api.retrieve)
	sg.POST("", api.update)
	sg.POST("/test-email", api.testEmail)
	sg.POST("/test-sms", api.testSMS)
}

func (api *settingsApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Get())
}

// update binds the request body over the current settings, so fields omitted
// from a partial body keep their stored values.
func (api *settingsApi) update(ctx echo.Context) error {
	data := api.store.Get()
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settings")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.store.Put(data))
}

// testEmail sends a sample message to the configured contact email.
func (api *settingsApi) testEmail(ctx echo.Context) error {
	s := api.store.Get()
	if s.ContactEmail == "" {
		return core.NewValidationError(nil,
			core.FieldError{Field: "contact_email", Error: "no contact email configured"})
	}

	api.emailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: s.AcademyName, Address: s.ContactEmail}},
		Subject:     "Test email",
		TextContent: "This is a test email from " + s.AcademyName + ".",
	})
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Test email sent to " + s.ContactEmail + "."})
}

// testSMS sends a sample message to the configured contact phone.
func (api *settingsApi) testSMS(ctx echo.Context) error {
	s := api.store.Get()
	if s.ContactPhone == "" {
		return core.NewValidationError(nil,
			core.FieldError{Field: "contact_phone", Error: "no contact phone configured"})
	}

	if err := api.smsSvc.SendMessages(&core.SMSMessage{
		To:   s.ContactPhone,
		Body: "This is a test SMS from " + s.AcademyName + ".",
	}); err != nil {
		return errors.Wrap(err, "sending test SMS")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Test SMS sent to " + s.ContactPhone + "."})
}
