package service

import (
	"errors"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/config"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
)

// Input validation and state errors. Handlers match these with errors.Is; the
// field name, when there is one, is wrapped into the message.
var (
	ErrMissingField      = errors.New("required field missing")
	ErrEmptyReason       = errors.New("rejection reason is required")
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRequestNotFound   = errors.New("member request not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNotEditing        = errors.New("profile is not in edit mode")
	ErrNoDashboard       = errors.New("no dashboard mounted")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidToken      = errors.New("invalid token")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth     *AuthGate
	Tokens   TokenIssuer
	Sessions *SessionService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config        *config.Config
	Repos         *repository.Repositories
	Notifier      Notifier
	Authenticator Authenticator
	Scheduler     Scheduler
}

func NewServices(deps *ServiceDeps) *Services {
	authenticator := deps.Authenticator
	if authenticator == nil {
		authenticator = DevAuthenticator{}
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	sessions := NewSessionService(SessionOptions{
		Repo:         deps.Repos.SessionRepo,
		Activity:     deps.Repos.ActivityRepo,
		Notifier:     notifier,
		Scheduler:    deps.Scheduler,
		WelcomeDelay: deps.Config.WelcomeDelay,
	})

	return &Services{
		Auth:     NewAuthGate(authenticator),
		Tokens:   NewTokenIssuer(deps.Config.JWTSecret, deps.Config.JWTExpiry),
		Sessions: sessions,
	}
}
