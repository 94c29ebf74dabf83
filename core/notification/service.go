package notification

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/wkarobia/cantera/core"
)

var (
	ErrNotFound      = errors.New("notification not found")
	ErrAlreadySent   = errors.New("notification has already been sent")
	ErrInvalidMethod = errors.New("invalid notification method")
	ErrNoRecipient   = errors.New("notification has no recipient for its method")
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		FilterNotifications(ctx context.Context, filter QueryFilter) ([]Notification, error)
		UpdateNotification(ctx context.Context, n Notification) (Notification, error)
		// UpdateStatusByID transitions only rows currently in one of `from`;
		// returns the number of rows actually updated.
		UpdateStatusByID(ctx context.Context, from []Status, to Status, ids ...string) (int, error)
		// DeleteByIDWithStatus removes only rows currently in one of `statuses`;
		// returns the number of rows actually deleted.
		DeleteByIDWithStatus(ctx context.Context, statuses []Status, ids ...string) (int, error)
		ListDuePending(ctx context.Context, due time.Time) ([]Notification, error)
		CountNotifications(ctx context.Context) (int, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		smsSvc  core.SMSService
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, smsSvc core.SMSService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, smsSvc: smsSvc, logger: logger}
}

func (svc *Service) Create(ctx context.Context, nn NewNotification) (Notification, error) {
	now := time.Now().UTC()
	n := Notification{
		StudentID:      nn.StudentID,
		RecipientEmail: nn.RecipientEmail,
		RecipientPhone: nn.RecipientPhone,
		Subject:        nn.Subject,
		Body:           nn.Body,
		Method:         nn.Method,
		Status:         StatusPending,
		ScheduledAt:    nn.ScheduledAt.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if n.ScheduledAt.IsZero() {
		n.ScheduledAt = now
	}
	return svc.repo.CreateNotification(ctx, n)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Notification, error) {
	return svc.repo.FilterNotifications(ctx, filter)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountNotifications(ctx)
}

// Send dispatches a single notification. Re-sending an already-SENT
// notification is rejected; FAILED and PENDING notifications may be
// (re)tried. The resulting SENT/FAILED status is persisted either way.
func (svc *Service) Send(ctx context.Context, id string) (Notification, error) {
	n, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.Status == StatusSent {
		return Notification{}, core.NewValidationError(ErrAlreadySent)
	}
	return svc.dispatch(ctx, n)
}

// CreateAndSend creates a notification and dispatches it immediately.
func (svc *Service) CreateAndSend(ctx context.Context, nn NewNotification) (Notification, error) {
	n, err := svc.Create(ctx, nn)
	if err != nil {
		return Notification{}, err
	}
	return svc.dispatch(ctx, n)
}

// dispatch runs the per-method delivery branch, then records the outcome.
// The status write happens regardless of which branch ran; an unknown method
// therefore still lands as FAILED with the error recorded, matching the
// established behavior callers depend on.
func (svc *Service) dispatch(ctx context.Context, n Notification) (Notification, error) {
	var dispatchErr error

	switch n.Method {
	case MethodEmail:
		if n.RecipientEmail == "" {
			dispatchErr = ErrNoRecipient
		} else {
			svc.mailSvc.SendMessages(&core.EmailMessage{
				To:          []mail.Address{{Address: n.RecipientEmail}},
				Subject:     n.Subject,
				TextContent: n.Body,
			})
		}
	case MethodSMS:
		if n.RecipientPhone == "" {
			dispatchErr = ErrNoRecipient
		} else {
			dispatchErr = svc.smsSvc.SendMessages(&core.SMSMessage{To: n.RecipientPhone, Body: n.Body})
		}
	case MethodInApp:
		// delivered by being readable from the notifications table
	default:
		dispatchErr = ErrInvalidMethod
	}

	now := time.Now().UTC()
	if dispatchErr != nil {
		n.Status = StatusFailed
		n.LastError = dispatchErr.Error()
	} else {
		n.Status = StatusSent
		n.SentAt = &now
		n.LastError = ""
	}
	n.UpdatedAt = now

	n, err := svc.repo.UpdateNotification(ctx, n)
	if err != nil {
		return Notification{}, err
	}
	if dispatchErr == ErrInvalidMethod || dispatchErr == ErrNoRecipient {
		return n, core.NewValidationError(dispatchErr)
	}
	return n, nil
}

// Bulk applies one action to many notifications. Non-matching rows are
// skipped silently; the affected count reflects rows actually touched.
func (svc *Service) Bulk(ctx context.Context, br BulkRequest) (BulkResult, error) {
	switch br.Action {
	case BulkSend:
		var affected int
		for _, id := range br.IDs {
			n, err := svc.repo.GetNotificationByID(ctx, id)
			if err != nil {
				continue
			}
			if n.Status != StatusPending {
				continue
			}
			if _, err := svc.dispatch(ctx, n); err != nil {
				svc.logger.Warn(fmt.Sprintf("bulk send: notification %s: %v", id, err))
			}
			affected++
		}
		return BulkResult{Affected: affected}, nil

	case BulkCancel:
		affected, err := svc.repo.UpdateStatusByID(ctx, []Status{StatusPending}, StatusCancelled, br.IDs...)
		return BulkResult{Affected: affected}, err

	case BulkDelete:
		affected, err := svc.repo.DeleteByIDWithStatus(ctx, []Status{StatusCancelled, StatusFailed}, br.IDs...)
		return BulkResult{Affected: affected}, err
	}
	return BulkResult{}, core.NewValidationError(errors.New("invalid bulk action"))
}

// ProcessScheduled dispatches every PENDING notification due by now.
// Per-item failures are logged and counted, never abort the batch.
func (svc *Service) ProcessScheduled(ctx context.Context) (ProcessResult, error) {
	due, err := svc.repo.ListDuePending(ctx, time.Now().UTC())
	if err != nil {
		return ProcessResult{}, err
	}

	var res ProcessResult
	for _, n := range due {
		res.Processed++
		sent, err := svc.dispatch(ctx, n)
		if err != nil || sent.Status != StatusSent {
			res.Failed++
			if err != nil {
				svc.logger.Warn(fmt.Sprintf("processing scheduled notification %s: %v", n.ID, err))
			}
			continue
		}
		res.Sent++
	}
	return res, nil
}
