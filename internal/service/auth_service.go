package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/config"
	"github.com/ST1000-S/iTechies/internal/domain"
	"github.com/ST1000-S/iTechies/internal/events"
	"github.com/ST1000-S/iTechies/internal/repository"
	"github.com/ST1000-S/iTechies/internal/session"
	apperrors "github.com/ST1000-S/iTechies/pkg/util"
)

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	users      repository.UserRepository
	sessions   session.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   session.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         string
	Skills       []string
	Location     string
	Availability string
}

// missingFields returns every missing or invalid field, not just the
// first one.
func (in RegisterInput) missingFields() []string {
	fields := []string{}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, "name")
	}
	if strings.TrimSpace(in.Email) == "" {
		fields = append(fields, "email")
	}
	if in.Password == "" {
		fields = append(fields, "password")
	}
	if strings.TrimSpace(in.Role) == "" || !domain.ValidRole(in.Role) {
		fields = append(fields, "role")
		return fields
	}
	if domain.Role(in.Role) == domain.RoleProvider {
		hasSkill := false
		for _, s := range in.Skills {
			if strings.TrimSpace(s) != "" {
				hasSkill = true
				break
			}
		}
		if !hasSkill {
			fields = append(fields, "skills")
		}
		if strings.TrimSpace(in.Location) == "" {
			fields = append(fields, "location")
		}
	}
	return fields
}

// Register creates an account and establishes a session for it. The
// plaintext password is hashed immediately and never stored or logged.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *session.Session, error) {
	if fields := input.missingFields(); len(fields) > 0 {
		return nil, nil, apperrors.NewFieldValidationError(fields)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	var user *domain.User
	if domain.Role(input.Role) == domain.RoleProvider {
		user, err = domain.NewProvider(input.Name, input.Email, hash, input.Skills, input.Location)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error(), nil)
		}
	} else {
		user = domain.NewCustomer(input.Name, input.Email, hash)
	}
	user.Availability = input.Availability

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, nil, apperrors.NewEmailTaken()
		}
		return nil, nil, err
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.EventUserRegistered, events.Actor{UserID: user.ID, Role: user.Role},
		events.UserRegisteredPayload{UserID: user.ID, Role: user.Role})

	return user, sess, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the identical error; account existence is never
// disclosed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *session.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewInvalidCredentials()
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// Logout destroys the session. It is idempotent and best-effort:
// destruction errors are logged, never surfaced to the caller.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		s.logger.Warn("session destruction failed", zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
