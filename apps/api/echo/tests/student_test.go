package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/wkarobia/cantera/core/student"
	"github.com/wkarobia/cantera/core/user"
	"github.com/wkarobia/cantera/tests"
)

func Test_studentApi_enroll(t *testing.T) {
	resetDB(t)

	coach := testutil.CreateUser(t, usrRepo, "Coach", "carter", "carter@test.cd", "", []string{user.RoleCoach}, true)
	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", user.StaffRoles, true)
	grp := testutil.CreateGroup(t, grpRepo, "U-9 Lions", "U-9", coach.ID)

	staffToken := getToken(t, staff)

	newStu := func(name, groupID string) []byte {
		return marchallObj(t, student.NewStudent{
			Name:        name,
			BirthDate:   time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC),
			GroupID:     groupID,
			ParentName:  "Parent",
			ParentPhone: "+254700000001",
			ParentEmail: "parent@test.cd",
		})
	}

	reqMsg := "this field is required"
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "manage capability required", token: getToken(t, coach), body: newStu("Asha", ""),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: staffToken, body: marchallObj(t, map[string]string{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallFieldErrs(t, map[string]string{"name": reqMsg, "birth_date": reqMsg, "parent_name": reqMsg, "parent_phone": reqMsg}),
		},
		{name: "enrolled unassigned", token: staffToken, body: newStu("Asha Otieno", ""), wantCode: http.StatusCreated},
		{name: "enrolled into group", token: staffToken, body: newStu("Brian Mwangi", grp.ID), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/students"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var stu student.Student
				if err := json.Unmarshal(rec.Body.Bytes(), &stu); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if stu.ID == "" {
					t.Error("failed! empty student ID")
				}
				if !stu.IsActive {
					t.Error("failed! student should be active")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_query(t *testing.T) {
	resetDB(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", user.StaffRoles, true)
	grp := testutil.CreateGroup(t, grpRepo, "U-9 Lions", "U-9", "")
	asha := testutil.CreateStudent(t, stuRepo, "Asha Otieno", grp.ID)
	brian := testutil.CreateStudent(t, stuRepo, "Brian Mwangi", "")

	token := getToken(t, staff)
	empty := marchallList(t, []interface{}{}...)

	path := func(search, groupID string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if groupID != "" {
			v.Add("group_id", groupID)
		}
		return "/api/students?" + v.Encode()
	}

	tests := []httpTest{
		{name: "Auth required", path: "/api/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", path: "/api/students", token: token, wantData: marchallList(t, asha, brian)},
		{name: "search (unknown)", path: path("lol", ""), token: token, wantData: empty},
		{name: "search by name", path: path("mwangi", ""), token: token, wantData: marchallList(t, brian)},
		{name: "filter by group", path: path("", grp.ID), token: token, wantData: marchallList(t, asha)},
		{name: "retrieve", path: "/api/students/" + asha.ID, token: token, wantData: marchallObj(t, asha)},
		{name: "retrieve unknown", path: "/api/students/lol", token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_history(t *testing.T) {
	resetDB(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", user.StaffRoles, true)
	grp := testutil.CreateGroup(t, grpRepo, "U-9 Lions", "U-9", "")
	token := getToken(t, staff)

	// enroll through the API so the first history record is opened
	body := marchallObj(t, student.NewStudent{
		Name:        "Asha Otieno",
		BirthDate:   time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC),
		GroupID:     grp.ID,
		ParentName:  "Otieno",
		ParentPhone: "+254700000001",
	})
	req, rec := newAuthRequest(http.MethodPost, "/api/students", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("enroll failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var stu student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &stu); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	t.Run("unknown student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/students/lol/history", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("enrollment record", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/students/"+stu.ID+"/history", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var hist []student.GroupHistory
		if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(hist) != 1 {
			t.Fatalf("failed! history len = %d; want 1", len(hist))
		}
		if hist[0].GroupID != grp.ID || !hist[0].IsOpen() || hist[0].Reason != student.ReasonEnrollment {
			t.Errorf("failed! unexpected record %+v", hist[0])
		}
	})
}

func Test_studentApi_updateAndDestroy(t *testing.T) {
	resetDB(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", user.StaffRoles, true)
	token := getToken(t, staff)

	stu := testutil.CreateStudent(t, stuRepo, "Brian Otieno", "")

	t.Run("update contact details", func(t *testing.T) {
		notes := "asthma, carries inhaler"
		body := marchallObj(t, student.UpdateStudent{ParentPhone: "+254711111111", MedicalNotes: &notes})
		req, rec := newAuthRequest(http.MethodPut, "/api/students/"+stu.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var updated student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if updated.ParentPhone != "+254711111111" || updated.MedicalNotes != notes {
			t.Errorf("failed! student = %+v", updated)
		}
		if updated.Name != stu.Name {
			t.Errorf("failed! name changed to %q", updated.Name)
		}
	})

	t.Run("deactivate", func(t *testing.T) {
		isActive := false
		body := marchallObj(t, student.UpdateStudent{IsActive: &isActive})
		req, rec := newAuthRequest(http.MethodPut, "/api/students/"+stu.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var updated student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if updated.IsActive {
			t.Error("failed! student should be inactive")
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/students/"+stu.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/api/students/"+stu.ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})
}
