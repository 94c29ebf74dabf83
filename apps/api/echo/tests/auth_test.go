package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	. "github.com/wkarobia/cantera/apps/api/echo"
	"github.com/wkarobia/cantera/core/user"
	"github.com/wkarobia/cantera/tests"
)

func Test_authApi_login(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "Str0ngPwd!", user.StaffRoles, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", "Str0ngPwd!", user.StaffRoles, false)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallFieldErrs(t, map[string]string{"username": reqMsg, "password": reqMsg}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Username: "lol", Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Username: usr.Username, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, LoginRequest{Username: "ndog", Password: "Str0ngPwd!"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", wantCode: http.StatusOK, body: marchallObj(t, LoginRequest{Username: usr.Username, Password: "Str0ngPwd!"})},
		{name: "login with email", wantCode: http.StatusOK, body: marchallObj(t, LoginRequest{Username: usr.Email, Password: "Str0ngPwd!"})},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				if respData.User.ID != usr.ID {
					t.Errorf("failed! user = %v; want %v", respData.User.ID, usr.ID)
				}

				var cookie *http.Cookie
				for _, c := range rec.Result().Cookies() {
					if c.Name == "token" {
						cookie = c
					}
				}
				if cookie == nil {
					t.Fatal("failed! token cookie not set")
				}
				if cookie.Value != respData.Token {
					t.Error("failed! cookie does not carry the token")
				}
				if !cookie.HttpOnly {
					t.Error("failed! cookie not HttpOnly")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_logout(t *testing.T) {
	resetDB(t)

	req, rec := newRequest(http.MethodPost, "/api/auth/logout")
	app.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, SuccessResponse{Success: "Logged out."})}
	checkCodeAndData(t, tt, rec)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("failed! token cookie not cleared")
	}
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Errorf("failed! cookie = %q maxAge = %d; want empty value and maxAge -1", cookie.Value, cookie.MaxAge)
	}
}

func Test_authGate(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", user.StaffRoles, true)

	validToken := getToken(t, usr)

	expiredClaims := GetUserClaims(usr)
	expiredClaims.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	expiredToken, err := GenerateToken(expiredClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "no token", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "tampered token", token: validToken + "lol", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "expired token", token: expiredToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "valid token", token: validToken, wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/users/roles"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("token cookie stands in for the header", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/users/roles")
		req.AddCookie(&http.Cookie{Name: "token", Value: validToken})
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles)}
		checkCodeAndData(t, tt, rec)
	})
}
