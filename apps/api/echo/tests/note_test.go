package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/wkarobia/cantera/core/note"
	"github.com/wkarobia/cantera/core/user"
	"github.com/wkarobia/cantera/tests"
)

func Test_noteApi(t *testing.T) {
	resetDB(t)

	author := testutil.CreateUser(t, usrRepo, "Author", "author", "author@test.cd", "", user.StaffRoles, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", user.StaffRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	authorToken := getToken(t, author)
	otherToken := getToken(t, other)

	stu := testutil.CreateStudent(t, stuRepo, "Brian Otieno", "")

	var created note.Note

	t.Run("create sets the author from the token", func(t *testing.T) {
		body := marchallObj(t, note.NewNote{StudentID: stu.ID, Body: "Strong left foot, needs work on positioning."})
		req, rec := newAuthRequest(http.MethodPost, "/api/notes", authorToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if created.AuthorID != author.ID {
			t.Errorf("failed! author = %v; want %v", created.AuthorID, author.ID)
		}
	})

	t.Run("query by student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/notes?student_id="+stu.ID, otherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var notes []note.Note
		if err := json.Unmarshal(rec.Body.Bytes(), &notes); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(notes) != 1 || notes[0].ID != created.ID {
			t.Errorf("failed! notes = %+v; want just %v", notes, created.ID)
		}
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, note.UpdateNote{Body: "Positioning much improved."})
		tests := []httpTest{
			{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
			{
				name: "only the author or an admin", token: otherToken, body: body,
				wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
			},
			{
				name: "unknown note", token: authorToken, path: "/api/notes/lol", body: body,
				wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
			},
			{name: "author updates own note", token: authorToken, body: body, wantCode: http.StatusOK},
			{name: "admin updates any note", token: getToken(t, admin), body: body, wantCode: http.StatusOK},
		}
		for _, tt := range tests {
			if tt.path == "" {
				tt.path = "/api/notes/" + created.ID
			}

			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodPatch, tt.path, tt.token, tt.body)
				app.ServeHTTP(rec, req)

				if tt.wantCode != http.StatusOK {
					checkCodeAndData(t, tt, rec)
					return
				}
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var updated note.Note
				if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if updated.Body != "Positioning much improved." {
					t.Errorf("failed! body = %q", updated.Body)
				}
			})
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/notes/"+created.ID, otherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)

		req, rec = newAuthRequest(http.MethodDelete, "/api/notes/"+created.ID, authorToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodDelete, "/api/notes/"+created.ID, authorToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})
}
