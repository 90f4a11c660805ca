package security

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "dGhpcy1pcy1hLXRlc3Qtc2lnbmluZy1zZWNyZXQ="

func TestIdentityTokenRoundtrip(t *testing.T) {
	identity := &Identity{UserID: "u-42", Role: "manager", DeviceID: "device-1"}

	token, err := CreateIdentityToken(identity, testSecret, 3600)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	secret, err := base64.StdEncoding.DecodeString(testSecret)
	assert.NoError(t, err)

	claims, err := ParseIdentityToken(token, secret)
	assert.NoError(t, err)
	assert.Equal(t, "u-42", claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "device-1", claims.DeviceID)
	assert.Equal(t, "crewtrack", claims.Issuer)
}

func TestIdentityTokenSiteClaim(t *testing.T) {
	token, err := CreateIdentityToken(&Identity{UserID: "site-3", Role: "supervisor", SiteID: 3}, testSecret, 3600)
	assert.NoError(t, err)

	secret, _ := base64.StdEncoding.DecodeString(testSecret)
	claims, err := ParseIdentityToken(token, secret)
	assert.NoError(t, err)
	assert.Equal(t, uint(3), claims.SiteID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := CreateIdentityToken(&Identity{UserID: "u-42", Role: "admin"}, testSecret, 3600)
	assert.NoError(t, err)

	_, err = ParseIdentityToken(token, []byte("a-completely-different-secret"))
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := CreateIdentityToken(&Identity{UserID: "u-42", Role: "admin"}, testSecret, -60)
	assert.NoError(t, err)

	secret, _ := base64.StdEncoding.DecodeString(testSecret)
	_, err = ParseIdentityToken(token, secret)
	assert.Error(t, err)
}

func TestCreateRejectsMalformedSecret(t *testing.T) {
	_, err := CreateIdentityToken(&Identity{UserID: "u-42"}, "not base64!!!", 3600)
	assert.Error(t, err)
}
