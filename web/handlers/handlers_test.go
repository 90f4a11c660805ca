package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"crewtrack.in/crewtrack/core"
	"crewtrack.in/crewtrack/model"
	"crewtrack.in/crewtrack/security"
)

const testSecret = "dGhpcy1pcy1hLXRlc3Qtc2lnbmluZy1zZWNyZXQ="

type recordingDispatcher struct {
	codes []string
}

func (d *recordingDispatcher) DispatchOTP(ctx context.Context, email, code string) error {
	d.codes = append(d.codes, code)
	return nil
}

type fixture struct {
	router     *gin.Engine
	attendance *core.MemoryAttendanceRepository
	users      *core.MemoryUserRepository
	dispatcher *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	attendance := core.NewMemoryAttendanceRepository()
	users := core.NewMemoryUserRepository()
	sites := core.NewMemorySiteRepository()
	sites.AddSite(model.Site{ID: 3, Name: "Andheri East", Username: "andheri", Password: "sitepass",
		Latitude: 19.1, Longitude: 72.85, GeofenceRadius: 200})
	sites.AddEmployee(model.Employee{ID: "e101", Name: "Asha", SiteID: 3})
	sites.AddEmployee(model.Employee{ID: "e102", Name: "Ravi", SiteID: 3})
	dispatcher := &recordingDispatcher{}

	secret, err := base64.StdEncoding.DecodeString(testSecret)
	assert.NoError(t, err)

	r := gin.New()
	Register(r, Services{
		Store:     core.NewAttendanceStore(attendance),
		Auth:      core.NewAuthService(users, sites, dispatcher, core.DefaultBootstrapPolicy(), testSecret),
		Sites:     sites,
		JWTSecret: secret,
	})

	return &fixture{router: r, attendance: attendance, users: users, dispatcher: dispatcher}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func mintToken(t *testing.T, identity *security.Identity) string {
	t.Helper()
	token, err := security.CreateIdentityToken(identity, testSecret, 3600)
	assert.NoError(t, err)
	return token
}

func TestSyncEndpointSkipsMalformedEntries(t *testing.T) {
	f := newFixture(t)
	token := mintToken(t, &security.Identity{UserID: "site-3", Role: model.RoleSupervisor, SiteID: 3})

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/sync", token, []gin.H{
		{"employeeId": "e101", "date": "2025-06-01", "status": "P"},
		{"date": "2025-06-01", "status": "A"}, // no employeeId
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data SyncResponseDTO `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Success)
	assert.Equal(t, 1, envelope.Data.SyncedCount)
	assert.Equal(t, 1, envelope.Data.Details.Upserted)
	assert.Equal(t, 1, envelope.Data.Details.Skipped)
}

func TestSyncEndpointRejectsMissingToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/sync", "", []gin.H{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSyncEndpointRejectsForgedToken(t *testing.T) {
	f := newFixture(t)
	forged, err := security.CreateIdentityToken(&security.Identity{UserID: "x"},
		base64.StdEncoding.EncodeToString([]byte("wrong-signing-key")), 3600)
	assert.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/sync", forged, []gin.H{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOTPLoginFlowOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"identifier": "admin", "password": "changeme123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.dispatcher.codes, 1)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/verify-otp", "", gin.H{
		"identifier": "admin", "otp": f.dispatcher.codes[0], "deviceId": "device-1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data core.Session `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, model.RoleAdmin, envelope.Data.Role)

	// the minted token opens the protected surface
	listRec := f.do(t, http.MethodGet, "/api/v1/attendance", envelope.Data.Token, nil)
	assert.Equal(t, http.StatusOK, listRec.Code)

	// replaying the consumed code fails
	rec = f.do(t, http.MethodPost, "/api/v1/auth/verify-otp", "", gin.H{
		"identifier": "admin", "otp": f.dispatcher.codes[0], "deviceId": "device-1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsBadCredentialsOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"identifier": "admin", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// binding failures are a 400, not a 401
	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"identifier": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevokeTrustOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"identifier": "admin", "password": "changeme123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/auth/verify-otp", "", gin.H{
		"identifier": "admin", "otp": f.dispatcher.codes[0], "deviceId": "device-1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data core.Session `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	rec = f.do(t, http.MethodPost, "/api/v1/auth/revoke-trust", envelope.Data.Token, gin.H{
		"userId": envelope.Data.UserID,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	user, _ := f.users.FindByID(context.Background(), envelope.Data.UserID)
	assert.Empty(t, user.TrustedDevices)
}

func TestMeHandlerIncludesSupervisorSite(t *testing.T) {
	f := newFixture(t)
	token := mintToken(t, &security.Identity{UserID: "site-3", Role: model.RoleSupervisor, SiteID: 3})

	rec := f.do(t, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			UserID        string     `json:"userId"`
			Role          string     `json:"role"`
			Site          model.Site `json:"site"`
			AssignedSites []uint     `json:"assignedSites"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "site-3", envelope.Data.UserID)
	assert.Equal(t, "Andheri East", envelope.Data.Site.Name)
	assert.Equal(t, 200.0, envelope.Data.Site.GeofenceRadius)
	assert.Equal(t, []uint{3}, envelope.Data.AssignedSites)
}

func TestSiteEmployeesEndpoint(t *testing.T) {
	f := newFixture(t)
	token := mintToken(t, &security.Identity{UserID: "site-3", Role: model.RoleSupervisor, SiteID: 3})

	rec := f.do(t, http.MethodGet, "/api/v1/sites/3/employees", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Employees []model.Employee `json:"employees"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Employees, 2)

	rec = f.do(t, http.MethodGet, "/api/v1/sites/abc/employees", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEndpointFilters(t *testing.T) {
	f := newFixture(t)
	token := mintToken(t, &security.Identity{UserID: "site-3", Role: model.RoleSupervisor, SiteID: 3})

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/sync", token, []gin.H{
		{"employeeId": "e101", "date": "2025-06-01", "status": "P"},
		{"employeeId": "e102", "date": "2025-06-01", "status": "A"},
		{"employeeId": "e101", "date": "2025-06-02", "status": "P"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/attendance?date=2025-06-01", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Records []model.AttendanceRecord `json:"records"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Records, 2)

	rec = f.do(t, http.MethodGet, "/api/v1/attendance?employeeId=e101", token, nil)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Records, 2)
}

func TestClearPhotoEndpointValidation(t *testing.T) {
	f := newFixture(t)
	token := mintToken(t, &security.Identity{UserID: "site-3", Role: model.RoleSupervisor, SiteID: 3})

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/photo/clear", token, gin.H{"employeeId": "e101"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/attendance/photo/clear", token, gin.H{
		"employeeId": "e101", "date": "01/06/2025",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/attendance/photo/clear", token, gin.H{
		"employeeId": "e101", "date": "2025-06-01",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
