package service

import (
	"context"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/ws"
	"go-insumos-ws/pkg/jwt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionIdleTimeout ends a session that has not sent a heartbeat for this long.
const SessionIdleTimeout = 5 * time.Minute

var (
	ErrInvalidCredentials = apierror.Unauthorized("invalid email or password")
	ErrUserInactive       = apierror.Unauthorized("user account is inactive")
	ErrSessionReplaced    = apierror.Unauthorized("session expired (logged in on another device)")
	ErrSessionTimeout     = apierror.Unauthorized("session expired due to inactivity")
	ErrInvalidToken       = apierror.Unauthorized("invalid or expired token")
	ErrWrongPassword      = apierror.Validation("current password is incorrect")
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	// Authenticate resolves a bearer token to its active user, enforcing single session.
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
	Heartbeat(ctx context.Context, actor model.Actor) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	events   EventPublisher
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, events EventPublisher) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		events:   publisherOrNop(events),
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if apierror.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// a new token version logs out every other device
	version := uuid.New().String()
	now := s.now()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateLastSeen(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.TokenVersion = version
	user.LastSeenAt = &now

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.PrivilegeCodes(), version)
	if err != nil {
		return nil, apierror.Internal("failed to generate token", err)
	}

	log.Info().Str("user", user.Email).Msg("login")
	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apierror.ValidationFields(map[string]string{"new_password": "must have at least 6 characters or items"})
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if apierror.IsNotFound(err) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return apierror.Internal("failed to hash new password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	// existing sessions end with the old password
	return s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.New().String())
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if apierror.IsNotFound(err) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	return user, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	user, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > SessionIdleTimeout {
		return nil, ErrSessionTimeout
	}
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(ctx context.Context, actor model.Actor) error {
	id, err := uuid.Parse(actor.ID)
	if err != nil {
		return ErrInvalidToken
	}
	now := s.now()
	if err := s.userRepo.UpdateLastSeen(ctx, id, now); err != nil {
		return err
	}

	s.events.Publish(ws.Event{
		Type: ws.EventUserStatus,
		Data: map[string]interface{}{
			"user_id":      actor.ID,
			"status":       "online",
			"last_seen_at": now,
		},
		User: actorRef(actor),
	})
	return nil
}
