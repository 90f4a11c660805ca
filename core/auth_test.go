package core

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crewtrack.in/crewtrack/model"
	"crewtrack.in/crewtrack/security"
)

const testSecret = "dGhpcy1pcy1hLXRlc3Qtc2lnbmluZy1zZWNyZXQ=" // base64

type captureDispatcher struct {
	mu    sync.Mutex
	codes []string
	fail  bool
}

func (d *captureDispatcher) DispatchOTP(ctx context.Context, email, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("smtp down")
	}
	d.codes = append(d.codes, code)
	return nil
}

func (d *captureDispatcher) last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.codes) == 0 {
		return ""
	}
	return d.codes[len(d.codes)-1]
}

func newTestAuthService(t *testing.T) (*AuthService, *MemoryUserRepository, *captureDispatcher) {
	t.Helper()
	users := NewMemoryUserRepository()
	sites := NewMemorySiteRepository()
	dispatcher := &captureDispatcher{}
	return NewAuthService(users, sites, dispatcher, DefaultBootstrapPolicy(), testSecret), users, dispatcher
}

func TestLoginIssuesOTP(t *testing.T) {
	svc, users, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "admin", "changeme123")
	assert.NoError(t, err)
	assert.True(t, res.RequireOTP)

	code := dispatcher.last()
	assert.Len(t, code, 6)

	user, _ := users.FindByIdentifier(ctx, "admin")
	if assert.NotNil(t, user.OTP) {
		assert.Equal(t, code, *user.OTP)
	}
	assert.NotNil(t, user.OTPExpiry)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), "admin", "not-the-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsUnknownIdentifier(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), "nobody", "changeme123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSurvivesDispatchFailure(t *testing.T) {
	svc, users, dispatcher := newTestAuthService(t)
	dispatcher.fail = true
	ctx := context.Background()

	res, err := svc.Login(ctx, "admin", "changeme123")
	assert.NoError(t, err)
	assert.True(t, res.RequireOTP)

	// the code is persisted even though delivery failed
	user, _ := users.FindByIdentifier(ctx, "admin")
	assert.NotNil(t, user.OTP)
}

func TestVerifyOTPMintsTokenAndTrustsDevice(t *testing.T) {
	svc, users, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "changeme123")
	assert.NoError(t, err)

	session, err := svc.VerifyOTP(ctx, "admin", dispatcher.last(), "device-1")
	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, session.Role)

	secret, _ := base64.StdEncoding.DecodeString(testSecret)
	claims, err := security.ParseIdentityToken(session.Token, secret)
	assert.NoError(t, err)
	assert.Equal(t, session.UserID, claims.UserID)
	assert.Equal(t, "device-1", claims.DeviceID)

	user, _ := users.FindByIdentifier(ctx, "admin")
	assert.True(t, user.IsTrusted("device-1"))
	assert.Nil(t, user.OTP)
	assert.Nil(t, user.OTPExpiry)
}

func TestVerifyOTPIsSingleUse(t *testing.T) {
	svc, _, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "changeme123")
	assert.NoError(t, err)
	code := dispatcher.last()

	_, err = svc.VerifyOTP(ctx, "admin", code, "device-1")
	assert.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, "admin", code, "device-1")
	assert.ErrorIs(t, err, ErrOTPMismatch)
}

func TestVerifyOTPWrongCodeIsRetryable(t *testing.T) {
	svc, _, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "changeme123")
	assert.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, "admin", "000000", "device-1")
	if err == nil {
		t.Skip("random code collided with the guess")
	}
	assert.ErrorIs(t, err, ErrOTPMismatch)

	// the stored code survives a bad guess
	_, err = svc.VerifyOTP(ctx, "admin", dispatcher.last(), "device-1")
	assert.NoError(t, err)
}

func TestVerifyOTPExpiryBoundary(t *testing.T) {
	svc, _, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	_, err := svc.Login(ctx, "admin", "changeme123")
	assert.NoError(t, err)
	code := dispatcher.last()

	// one second before expiry still verifies
	svc.now = func() time.Time { return issuedAt.Add(OTPValidity - time.Second) }
	_, err = svc.VerifyOTP(ctx, "admin", code, "device-1")
	assert.NoError(t, err)

	svc.now = func() time.Time { return issuedAt }
	_, err = svc.Login(ctx, "admin", "changeme123")
	assert.NoError(t, err)
	code = dispatcher.last()

	// exactly at expiry the code is dead
	svc.now = func() time.Time { return issuedAt.Add(OTPValidity) }
	_, err = svc.VerifyOTP(ctx, "admin", code, "device-1")
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestVerifyOTPTrimsWhitespace(t *testing.T) {
	svc, _, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "changeme123")
	assert.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, "admin", "  "+dispatcher.last()+" ", "device-1")
	assert.NoError(t, err)
}

func TestTrustedDeviceListGrowsOncePerDevice(t *testing.T) {
	svc, users, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	for _, device := range []string{"device-1", "device-2", "device-1"} {
		_, err := svc.Login(ctx, "admin", "changeme123")
		assert.NoError(t, err)
		_, err = svc.VerifyOTP(ctx, "admin", dispatcher.last(), device)
		assert.NoError(t, err)
	}

	user, _ := users.FindByIdentifier(ctx, "admin")
	assert.Equal(t, []string{"device-1", "device-2"}, user.TrustedDevices)
}

func TestRevokeTrustEmptiesDeviceList(t *testing.T) {
	svc, users, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "changeme123")
	assert.NoError(t, err)
	session, err := svc.VerifyOTP(ctx, "admin", dispatcher.last(), "device-1")
	assert.NoError(t, err)

	assert.NoError(t, svc.RevokeTrust(ctx, session.UserID))

	user, _ := users.FindByID(ctx, session.UserID)
	assert.Empty(t, user.TrustedDevices)
}

func TestSupervisorLogin(t *testing.T) {
	users := NewMemoryUserRepository()
	sites := NewMemorySiteRepository()
	sites.AddSite(model.Site{ID: 7, Name: "Andheri East", Username: "andheri", Password: "Site Pass 1"})
	svc := NewAuthService(users, sites, &captureDispatcher{}, nil, testSecret)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"exact credentials", "andheri", "Site Pass 1", nil},
		{"case-insensitive username", "ANDHERI", "Site Pass 1", nil},
		{"normalized password", "andheri", " sitepass1 ", nil},
		{"wrong password", "andheri", "sitepass2", ErrInvalidCredentials},
		{"unknown site", "borivali", "Site Pass 1", ErrInvalidCredentials},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session, err := svc.SupervisorLogin(ctx, tc.username, tc.password)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "site-7", session.UserID)
			assert.Equal(t, model.RoleSupervisor, session.Role)
			assert.Equal(t, []uint{7}, session.AssignedSites)

			secret, _ := base64.StdEncoding.DecodeString(testSecret)
			claims, err := security.ParseIdentityToken(session.Token, secret)
			assert.NoError(t, err)
			assert.Equal(t, uint(7), claims.SiteID)
		})
	}
}

func TestBootstrapProvisionOnlyAllowlisted(t *testing.T) {
	users := NewMemoryUserRepository()
	policy := DefaultBootstrapPolicy()
	ctx := context.Background()

	user, err := policy.Provision(ctx, users, "manager")
	assert.NoError(t, err)
	if assert.NotNil(t, user) {
		assert.Equal(t, model.RoleManager, user.Role)
	}

	user, err = policy.Provision(ctx, users, "intruder")
	assert.NoError(t, err)
	assert.Nil(t, user)

	policy.Enabled = false
	user, err = policy.Provision(ctx, users, "admin")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestGenerateOTPFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		code, err := GenerateOTP()
		assert.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
		seen[code] = true
	}
	// 32 draws from a million-code space should not all collide
	assert.Greater(t, len(seen), 1)
}
