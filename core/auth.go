package core

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"crewtrack.in/crewtrack/model"
	"crewtrack.in/crewtrack/security"
)

const (
	OTPValidity          = 10 * time.Minute
	TokenValiditySeconds = 24 * 3600
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOTPMismatch        = errors.New("otp mismatch")
	ErrOTPExpired         = errors.New("otp expired")
)

type UserRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
}

type SiteRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Site, error)
	FindByID(ctx context.Context, id uint) (*model.Site, error)
	ListEmployees(ctx context.Context, siteID uint) ([]model.Employee, error)
}

// OTPDispatcher delivers the code out-of-band. Delivery is allowed to be slow
// or to fail without aborting the login transition.
type OTPDispatcher interface {
	DispatchOTP(ctx context.Context, email, code string) error
}

type LoginResult struct {
	RequireOTP bool   `json:"requireOtp"`
	UserID     string `json:"userId"`
}

type Session struct {
	Token         string `json:"token"`
	UserID        string `json:"userId"`
	Role          string `json:"role"`
	AssignedSites []uint `json:"assignedSites,omitempty"`
}

// AuthService owns OTP issuance/verification, device trust and token minting.
type AuthService struct {
	Users      UserRepository
	Sites      SiteRepository
	Dispatcher OTPDispatcher
	Bootstrap  *BootstrapPolicy
	Secret     string // base64 HS256 signing secret

	now func() time.Time
}

func NewAuthService(users UserRepository, sites SiteRepository, dispatcher OTPDispatcher, bootstrap *BootstrapPolicy, base64Secret string) *AuthService {
	return &AuthService{
		Users:      users,
		Sites:      sites,
		Dispatcher: dispatcher,
		Bootstrap:  bootstrap,
		Secret:     base64Secret,
		now:        time.Now,
	}
}

// Login checks the password and moves the identity into the OTP-pending
// state: a fresh 6-digit code with a 10-minute expiry is persisted and
// dispatched. A dispatch failure is logged, not returned — the code stays
// usable if the user learns it through another channel.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	user, err := s.Users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil && s.Bootstrap != nil {
		user, err = s.Bootstrap.Provision(ctx, s.Users, identifier)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	code, err := GenerateOTP()
	if err != nil {
		return nil, err
	}
	expiry := s.now().Add(OTPValidity)
	user.OTP = &code
	user.OTPExpiry = &expiry
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}

	if err := s.Dispatcher.DispatchOTP(ctx, user.Email, code); err != nil {
		log.Printf("auth: otp dispatch to %s failed: %v", user.Email, err)
	}

	return &LoginResult{RequireOTP: true, UserID: user.ID}, nil
}

// VerifyOTP completes the login. The code is single use: both otp fields are
// cleared before anything else happens on the identity. deviceId joins the
// trusted set, and a 24h token is minted.
//
// There is no attempt counting — a wrong code can be retried until the
// 10-minute expiry passes. Kept for compatibility with existing clients.
func (s *AuthService) VerifyOTP(ctx context.Context, identifier, otp, deviceID string) (*Session, error) {
	user, err := s.Users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.OTP == nil || user.OTPExpiry == nil {
		return nil, ErrOTPMismatch
	}
	if !s.now().Before(*user.OTPExpiry) {
		return nil, ErrOTPExpired
	}
	if strings.TrimSpace(otp) != strings.TrimSpace(*user.OTP) {
		return nil, ErrOTPMismatch
	}

	user.OTP = nil
	user.OTPExpiry = nil
	if deviceID != "" && !user.IsTrusted(deviceID) {
		user.TrustedDevices = append(user.TrustedDevices, deviceID)
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}

	token, err := security.CreateIdentityToken(&security.Identity{
		UserID:   user.ID,
		Role:     user.Role,
		DeviceID: deviceID,
	}, s.Secret, TokenValiditySeconds)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, UserID: user.ID, Role: user.Role}, nil
}

// SupervisorLogin is the site-bound path: no OTP, no device trust. The
// credential is matched case-insensitively on username and with a normalized
// (lower-cased, whitespace-stripped) password compare, and the resulting
// identity is scoped to exactly that one site.
func (s *AuthService) SupervisorLogin(ctx context.Context, username, password string) (*Session, error) {
	site, err := s.Sites.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, ErrInvalidCredentials
	}
	if normalizeSecret(password) != normalizeSecret(site.Password) {
		return nil, ErrInvalidCredentials
	}

	userID := fmt.Sprintf("site-%d", site.ID)
	token, err := security.CreateIdentityToken(&security.Identity{
		UserID: userID,
		Role:   model.RoleSupervisor,
		SiteID: site.ID,
	}, s.Secret, TokenValiditySeconds)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:         token,
		UserID:        userID,
		Role:          model.RoleSupervisor,
		AssignedSites: []uint{site.ID},
	}, nil
}

// RevokeTrust empties the trusted-device set. Tokens already issued stay
// valid until their own expiry.
func (s *AuthService) RevokeTrust(ctx context.Context, userID string) error {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCredentials
	}
	user.TrustedDevices = []string{}
	return s.Users.Save(ctx, user)
}

// GenerateOTP returns a random 6-digit numeric code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeSecret(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
