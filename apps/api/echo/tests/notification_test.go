package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/wkarobia/cantera/core/notification"
	"github.com/wkarobia/cantera/core/user"
	emailsvc "github.com/wkarobia/cantera/services/email"
	"github.com/wkarobia/cantera/tests"
)

func Test_notificationApi(t *testing.T) {
	resetDB(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", user.StaffRoles, true)
	token := getToken(t, staff)

	t.Run("create", func(t *testing.T) {
		reqMsg := "this field is required"
		tests := []httpTest{
			{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
			{
				name: "required fields", token: token, body: marchallObj(t, notification.NewNotification{}),
				wantCode: http.StatusBadRequest,
				wantData: marchallFieldErrs(t, map[string]string{"subject": reqMsg, "body": reqMsg, "method": reqMsg}),
			},
			{
				name: "invalid recipient email", token: token,
				body: marchallObj(t, notification.NewNotification{
					RecipientEmail: "not-an-email", Subject: "Hey", Body: "Yo", Method: notification.MethodEmail,
				}),
				wantCode: http.StatusBadRequest,
			},
			{
				name: "created pending", token: token,
				body: marchallObj(t, notification.NewNotification{
					RecipientEmail: "parent@test.cd", Subject: "Fees due", Body: "Please clear the balance.",
					Method: notification.MethodEmail,
				}),
				wantCode: http.StatusCreated,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodPost, "/api/notifications", tt.token, tt.body)
				app.ServeHTTP(rec, req)

				switch tt.name {
				case "created pending":
					if rec.Code != tt.wantCode {
						t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
					}
					var n notification.Notification
					if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
						t.Fatalf("json.Unmarshal() failed! err %v", err)
					}
					if n.Status != notification.StatusPending {
						t.Errorf("failed! status = %v; want %v", n.Status, notification.StatusPending)
					}
					if n.ScheduledAt.IsZero() {
						t.Error("failed! scheduled_at should default to now")
					}
				case "invalid recipient email":
					if rec.Code != tt.wantCode {
						t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
					}
				default:
					checkCodeAndData(t, tt, rec)
				}
			})
		}
	})

	t.Run("create and send", func(t *testing.T) {
		body := marchallObj(t, notification.NewNotification{
			RecipientEmail: "parent@test.cd", Subject: "Training moved", Body: "Saturday 9am.",
			Method: notification.MethodEmail,
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/notifications/send", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var n notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if n.Status != notification.StatusSent || n.SentAt == nil {
			t.Errorf("failed! status = %v, sentAt = %v; want %v, non-nil", n.Status, n.SentAt, notification.StatusSent)
		}
		if len(emailsvc.SentMessages) != 1 {
			t.Errorf("failed! sent messages = %d; want 1", len(emailsvc.SentMessages))
		}

		t.Run("re-sending is rejected", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/notifications/"+n.ID+"/send", token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, httpErr{Error: notification.ErrAlreadySent.Error()}),
			}, rec)
		})
	})

	t.Run("send unknown notification", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/notifications/lol/send", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("bulk cancel skips non-pending", func(t *testing.T) {
		now := time.Now().UTC()
		pending := testutil.CreateNotification(t, notifRepo, notification.MethodEmail, notification.StatusPending, "a@test.cd", "", now)
		sent := testutil.CreateNotification(t, notifRepo, notification.MethodEmail, notification.StatusSent, "b@test.cd", "", now)

		body := marchallObj(t, notification.BulkRequest{Action: notification.BulkCancel, IDs: []string{pending.ID, sent.ID}})
		req, rec := newAuthRequest(http.MethodPost, "/api/notifications/bulk", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notification.BulkResult{Affected: 1}),
		}, rec)

		req, rec = newAuthRequest(http.MethodGet, "/api/notifications/"+pending.ID, token)
		app.ServeHTTP(rec, req)
		var got notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if got.Status != notification.StatusCancelled {
			t.Errorf("failed! status = %v; want %v", got.Status, notification.StatusCancelled)
		}
	})

	t.Run("process scheduled", func(t *testing.T) {
		resetDB(t)
		now := time.Now().UTC()

		testutil.CreateNotification(t, notifRepo, notification.MethodEmail, notification.StatusPending, "due@test.cd", "", now.Add(-time.Minute))
		testutil.CreateNotification(t, notifRepo, notification.MethodSMS, notification.StatusPending, "", "", now.Add(-time.Minute)) // no recipient
		future := testutil.CreateNotification(t, notifRepo, notification.MethodEmail, notification.StatusPending, "later@test.cd", "", now.Add(time.Hour))

		req, rec := newAuthRequest(http.MethodGet, "/api/notifications/process-scheduled", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notification.ProcessResult{Processed: 2, Sent: 1, Failed: 1}),
		}, rec)

		req, rec = newAuthRequest(http.MethodGet, "/api/notifications/"+future.ID, token)
		app.ServeHTTP(rec, req)
		var got notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if got.Status != notification.StatusPending {
			t.Errorf("failed! future notification status = %v; want %v", got.Status, notification.StatusPending)
		}
	})

	t.Run("query by status", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/notifications?status="+string(notification.StatusFailed), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var notifs []notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &notifs); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(notifs) != 1 {
			t.Errorf("failed! failed notifications = %d; want 1", len(notifs))
		}
	})
}
