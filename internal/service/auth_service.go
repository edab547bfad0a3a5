package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// ============================================
// Authenticator
// ============================================

type Credentials struct {
	Email    string
	Password string
	Role     types.Role
}

// Identity is what a successful authentication yields.
type Identity struct {
	Role         types.Role
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// Authenticator verifies credentials. A real backend would implement this.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Identity, error)
}

// DevAuthenticator is the development stub: every credential is accepted and
// the selected role is trusted as-is.
type DevAuthenticator struct{}

func (DevAuthenticator) Authenticate(ctx context.Context, creds Credentials) (Identity, error) {
	return Identity{Role: creds.Role, Email: creds.Email}, nil
}

// ============================================
// AuthGate
// ============================================

// AuthTarget receives the identity once a form passes the gate.
type AuthTarget interface {
	CompleteAuth(ctx context.Context, identity Identity) error
}

type LoginRequest struct {
	Email    string
	Password string
	Role     types.Role
}

type SignupRequest struct {
	FirstName   string
	LastName    string
	Position    types.Role
	Email       string
	PhoneNumber string
	Password    string
}

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`)

type AuthGate struct {
	authenticator Authenticator
}

func NewAuthGate(authenticator Authenticator) *AuthGate {
	return &AuthGate{authenticator: authenticator}
}

// SubmitLogin validates the login form. Nothing on target changes unless
// every required field is present.
func (g *AuthGate) SubmitLogin(ctx context.Context, target AuthTarget, req LoginRequest) error {
	if err := requireFields(
		field{"email", req.Email},
		field{"password", req.Password},
	); err != nil {
		return err
	}
	role, err := normalizeRole(req.Role)
	if err != nil {
		return err
	}

	identity, err := g.authenticator.Authenticate(ctx, Credentials{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return err
	}
	return target.CompleteAuth(ctx, identity)
}

// SubmitSignup validates the signup form and hashes the password before
// handing the identity to target.
func (g *AuthGate) SubmitSignup(ctx context.Context, target AuthTarget, req SignupRequest) error {
	if err := requireFields(
		field{"email", req.Email},
		field{"firstName", req.FirstName},
		field{"lastName", req.LastName},
		field{"phoneNumber", req.PhoneNumber},
		field{"password", req.Password},
	); err != nil {
		return err
	}
	if !phonePattern.MatchString(strings.TrimSpace(req.PhoneNumber)) {
		return fmt.Errorf("%w: phoneNumber", ErrInvalidInput)
	}
	role, err := normalizeRole(req.Position)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	identity, err := g.authenticator.Authenticate(ctx, Credentials{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return err
	}
	identity.FirstName = strings.TrimSpace(req.FirstName)
	identity.LastName = strings.TrimSpace(req.LastName)
	identity.PasswordHash = string(hash)
	return target.CompleteAuth(ctx, identity)
}

type field struct {
	name  string
	value string
}

func requireFields(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

// normalizeRole defaults an unset role select to member.
func normalizeRole(role types.Role) (types.Role, error) {
	if role == "" {
		return types.RoleMember, nil
	}
	if !types.IsValidRole(role) {
		return "", fmt.Errorf("%w: role %q", ErrInvalidInput, role)
	}
	return role, nil
}
