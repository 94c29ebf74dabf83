package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/wkarobia/cantera/core/training"
	"github.com/wkarobia/cantera/core/user"
	"github.com/wkarobia/cantera/tests"
)

func Test_trainingApi(t *testing.T) {
	resetDB(t)

	coach := testutil.CreateUser(t, usrRepo, "Coach", "carter", "carter@test.cd", "", []string{user.RoleCoach}, true)
	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", user.StaffRoles, true)
	coachToken := getToken(t, coach)

	grp := testutil.CreateGroup(t, grpRepo, "U-13", "U-13", coach.ID)

	var created training.Training

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, training.NewTraining{
			GroupID:   grp.ID,
			Title:     "Tuesday drills",
			Weekday:   2,
			StartTime: "16:30",
			Location:  "Main pitch",
		})
		tests := []httpTest{
			{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
			// training is managed by coaches and admins, not plain staff
			{
				name: "staff cannot manage training", token: getToken(t, staff), body: body,
				wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
			},
			{
				name: "weekday out of range", token: coachToken,
				body:     marchallObj(t, training.NewTraining{GroupID: grp.ID, Title: "Drills", Weekday: 9, StartTime: "16:30"}),
				wantCode: http.StatusBadRequest,
			},
			{name: "coach creates training", token: coachToken, body: body, wantCode: http.StatusCreated},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodPost, "/api/trainings", tt.token, tt.body)
				app.ServeHTTP(rec, req)

				switch tt.name {
				case "coach creates training":
					if rec.Code != tt.wantCode {
						t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
					}
					if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
						t.Fatalf("json.Unmarshal() failed! err %v", err)
					}
					if created.GroupID != grp.ID || created.StartTime != "16:30" {
						t.Errorf("failed! training = %+v", created)
					}
				case "weekday out of range":
					if rec.Code != tt.wantCode {
						t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
					}
				default:
					checkCodeAndData(t, tt, rec)
				}
			})
		}
	})

	t.Run("update", func(t *testing.T) {
		loc := "Pitch B"
		req, rec := newAuthRequest(http.MethodPut, "/api/trainings/"+created.ID, coachToken,
			marchallObj(t, training.UpdateTraining{Location: &loc}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var updated training.Training
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if updated.Location != loc || updated.Title != created.Title {
			t.Errorf("failed! training = %+v", updated)
		}
	})

	t.Run("sessions and attendance", func(t *testing.T) {
		date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
		req, rec := newAuthRequest(http.MethodPost, "/api/trainings/"+created.ID+"/sessions", coachToken,
			marchallObj(t, training.NewSession{Date: date, Notes: "friendly before the derby"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var sess training.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}

		t.Run("session on unknown training", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/trainings/lol/sessions", coachToken,
				marchallObj(t, training.NewSession{Date: date}))
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
		})

		stu1 := testutil.CreateStudent(t, stuRepo, "Alice Achieng", grp.ID)
		stu2 := testutil.CreateStudent(t, stuRepo, "Brian Otieno", grp.ID)

		t.Run("record attendance", func(t *testing.T) {
			sheet := training.AttendanceSheet{Entries: []training.AttendanceEntry{
				{StudentID: stu1.ID, Present: true},
				{StudentID: stu2.ID, Present: false, Remark: "sick"},
			}}
			req, rec := newAuthRequest(http.MethodPut, "/api/sessions/"+sess.ID+"/attendance", coachToken, marchallObj(t, sheet))
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
			}

			req, rec = newAuthRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/attendance", coachToken)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
			}
			var records []training.Attendance
			if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
				t.Fatalf("json.Unmarshal() failed! err %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("failed! records = %d; want 2", len(records))
			}
		})

		t.Run("re-recording updates existing entries", func(t *testing.T) {
			sheet := training.AttendanceSheet{Entries: []training.AttendanceEntry{
				{StudentID: stu2.ID, Present: true},
			}}
			req, rec := newAuthRequest(http.MethodPut, "/api/sessions/"+sess.ID+"/attendance", coachToken, marchallObj(t, sheet))
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
			}

			req, rec = newAuthRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/attendance", coachToken)
			app.ServeHTTP(rec, req)
			var records []training.Attendance
			if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
				t.Fatalf("json.Unmarshal() failed! err %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("failed! records = %d; want 2", len(records))
			}
			for _, r := range records {
				if r.StudentID == stu2.ID && !r.Present {
					t.Errorf("failed! %v should now be present", stu2.ID)
				}
			}
		})

		t.Run("attendance on unknown session", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/sessions/lol/attendance", coachToken)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
		})
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/trainings/"+created.ID, coachToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/api/trainings/"+created.ID, coachToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})
}
