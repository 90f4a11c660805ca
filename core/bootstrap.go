package core

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"crewtrack.in/crewtrack/model"
)

type BootstrapAccount struct {
	Email string
	Role  string
}

// BootstrapPolicy is the one deliberate exception to "reject unknown
// identity": a fixed allowlist of well-known usernames may be lazily created
// with the default password on their first login attempt. Disable it in
// production by leaving Enabled false.
type BootstrapPolicy struct {
	Enabled         bool
	DefaultPassword string
	Accounts        map[string]BootstrapAccount
}

func DefaultBootstrapPolicy() *BootstrapPolicy {
	return &BootstrapPolicy{
		Enabled:         true,
		DefaultPassword: "changeme123",
		Accounts: map[string]BootstrapAccount{
			"admin":   {Email: "admin@crewtrack.in", Role: model.RoleAdmin},
			"manager": {Email: "manager@crewtrack.in", Role: model.RoleManager},
		},
	}
}

// Provision creates the identity when the username is allowlisted, and
// returns nil otherwise.
func (p *BootstrapPolicy) Provision(ctx context.Context, users UserRepository, identifier string) (*model.User, error) {
	if p == nil || !p.Enabled {
		return nil, nil
	}
	account, ok := p.Accounts[identifier]
	if !ok {
		return nil, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     identifier,
		Email:        account.Email,
		Role:         account.Role,
		PasswordHash: string(hash),
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
