package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/product_catalog/internal/hash"
	"github.com/Skotchmaster/product_catalog/internal/logging"
	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/mykafka"
	"github.com/Skotchmaster/product_catalog/internal/repo"
	"github.com/Skotchmaster/product_catalog/internal/transport"
)

type UserService struct {
	Repo      *repo.GormRepo
	Publisher mykafka.Publisher
}

type NewUser struct {
	Email       string
	Username    string
	Password    string
	FirstName   string
	LastName    string
	IsStaff     bool
	IsSuperuser bool
}

// NormalizeEmail lowercases the domain part of an address.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// CreateUser stores an active user. An empty password leaves the account
// without a usable password.
func (s *UserService) CreateUser(ctx context.Context, nu NewUser) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create")

	email := NormalizeEmail(nu.Email)
	username := strings.TrimSpace(nu.Username)
	if email == "" {
		return nil, fmt.Errorf("%w: users must have an email address", ErrValidation)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: users must have an username", ErrValidation)
	}

	exists, err := s.Repo.UserExists(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		l.Warn("create_user_failed", "reason", "user already exist", "username", username)
		return nil, fmt.Errorf("%w: %v", ErrAlreadyExists, repo.ErrUserAlreadyExist)
	}

	pwHash, err := hash.HashPassword(nu.Password)
	if err != nil {
		l.Error("create_user_failed", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		PasswordHash: pwHash,
		IsStaff:      nu.IsStaff,
		IsSuperuser:  nu.IsSuperuser,
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: %v", ErrAlreadyExists, err)
		}
		return nil, err
	}

	s.publish(ctx, mykafka.UserRegistered, mykafka.UserPayload{ID: user.ID, Email: user.Email, Username: user.Username})
	l.Info("user_created", "user_id", user.ID, "staff", user.IsStaff, "superuser", user.IsSuperuser)
	return user, nil
}

// CreateSuperuser creates a staff superuser.
func (s *UserService) CreateSuperuser(ctx context.Context, email, username, password string) (*models.User, error) {
	return s.CreateUser(ctx, NewUser{
		Email:       email,
		Username:    username,
		Password:    password,
		IsStaff:     true,
		IsSuperuser: true,
	})
}

func (s *UserService) GetPublicUser(ctx context.Context, id uint) (*transport.UserPublic, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	total, err := s.Repo.CountUserProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &transport.UserPublic{ID: user.ID, Username: user.Username, TotalProducts: total}, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return notFound(err)
	}
	s.publish(ctx, mykafka.UserDeleted, mykafka.UserPayload{ID: id})
	return nil
}

func (s *UserService) GrantPermissions(ctx context.Context, id uint, codenames ...string) error {
	if len(codenames) == 0 {
		return fmt.Errorf("%w: no permissions given", ErrValidation)
	}
	if err := s.Repo.GrantPermissions(ctx, id, codenames...); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType string, payload mykafka.UserPayload) {
	if s.Publisher == nil {
		return
	}
	l := logging.FromContext(ctx).With("svc", "user", "event", eventType)

	ev, err := mykafka.NewEvent(eventType, payload)
	if err != nil {
		l.Error("build_event_failed", "error", err)
		return
	}
	if err := s.Publisher.PublishEvent(ctx, mykafka.TopicUserEvents, fmt.Sprint(payload.ID), ev); err != nil {
		l.Error("publish_event_failed", "error", err)
	}
}
