package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	. "github.com/wkarobia/cantera/apps/api/echo"
	"github.com/wkarobia/cantera/core/user"
	"github.com/wkarobia/cantera/tests"
)

func Test_searchApi(t *testing.T) {
	resetDB(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", user.StaffRoles, true)
	token := getToken(t, staff)

	grp := testutil.CreateGroup(t, grpRepo, "Lions U-9", "U-9", "")
	stu := testutil.CreateStudent(t, stuRepo, "Leo Lionel", grp.ID)

	search := func(t *testing.T, q string) SearchResponse {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/api/search?q="+url.QueryEscape(q), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var res SearchResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		return res
	}

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/search?q=lion")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("empty query returns nothing", func(t *testing.T) {
		res := search(t, "  ")
		if len(res.Results) != 0 {
			t.Errorf("failed! results = %+v; want none", res.Results)
		}
	})

	t.Run("matches across types", func(t *testing.T) {
		res := search(t, "lio")
		if len(res.Results) != 2 {
			t.Fatalf("failed! results = %+v; want 2", res.Results)
		}
		// students come first, then groups
		if res.Results[0].Type != "student" || res.Results[0].ID != stu.ID {
			t.Errorf("failed! first result = %+v", res.Results[0])
		}
		if res.Results[1].Type != "group" || res.Results[1].ID != grp.ID {
			t.Errorf("failed! second result = %+v", res.Results[1])
		}
	})

	t.Run("results are capped", func(t *testing.T) {
		for _, name := range []string{
			"Musa A", "Musa B", "Musa C", "Musa D", "Musa E", "Musa F",
			"Musa G", "Musa H", "Musa I", "Musa J", "Musa K", "Musa L",
		} {
			testutil.CreateStudent(t, stuRepo, name, grp.ID)
		}

		res := search(t, "musa")
		if len(res.Results) != 10 {
			t.Errorf("failed! results = %d; want 10", len(res.Results))
		}
	})
}
