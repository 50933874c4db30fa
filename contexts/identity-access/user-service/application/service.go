package application

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"kanvas/contexts/identity-access/user-service/domain/entities"
	domainerrors "kanvas/contexts/identity-access/user-service/domain/errors"
	"kanvas/contexts/identity-access/user-service/domain/services"
	"kanvas/contexts/identity-access/user-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
)

const (
	moduleName  = "identity-access/user-service"
	eventSource = "user-service"

	defaultSearchLimit = 10
)

type Registration struct {
	Firstname string
	Lastname  string
	Email     string
	Username  string
	Password  string
}

type Session struct {
	User      entities.User
	Token     string
	ExpiresAt time.Time
}

// ProfileUpdate carries a partial update; nil fields are left alone.
type ProfileUpdate struct {
	Firstname *string
	Lastname  *string
}

type Service struct {
	Repo   ports.Repository
	Tx     ports.TxRunner
	Hasher ports.PasswordHasher
	Tokens ports.TokenIssuer
	Outbox ports.OutboxWriter
	IDs    ports.IDGenerator
	Clock  ports.Clock
	Logger *slog.Logger
}

// Register stores a new user and publishes USER_CREATED in the same
// transaction.
func (s Service) Register(ctx context.Context, request Registration) (entities.User, error) {
	now := s.now()
	user := entities.User{
		Firstname: strings.TrimSpace(request.Firstname),
		Lastname:  strings.TrimSpace(request.Lastname),
		Email:     entities.NormalizeEmail(request.Email),
		Username:  strings.TrimSpace(request.Username),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !user.Validate() {
		return entities.User{}, domainerrors.ErrInvalidRequest
	}
	if len(request.Password) < entities.MinPasswordLength {
		return entities.User{}, domainerrors.ErrWeakPassword
	}
	user.AvatarColor = services.AvatarColor(user.Username)

	hash, err := s.Hasher.Hash(request.Password)
	if err != nil {
		return entities.User{}, err
	}
	user.PasswordHash = hash

	err = s.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.Repo.FindByEmail(ctx, user.Email); err == nil {
			return domainerrors.ErrEmailTaken
		} else if !errors.Is(err, domainerrors.ErrUserNotFound) {
			return err
		}
		if _, found, err := s.Repo.FindByUsername(ctx, user.Username); err != nil {
			return err
		} else if found {
			return domainerrors.ErrUsernameTaken
		}
		created, err := s.Repo.CreateUser(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return s.emit(ctx, eventsv1.UserCreated{UserProfile: profile(created)})
	})
	if err != nil {
		resolveLogger(s.Logger).Warn("user registration failed",
			"event", "user_registration_failed",
			"module", moduleName,
			"layer", "application",
			"username", user.Username,
			"error", err.Error(),
		)
		return entities.User{}, err
	}

	resolveLogger(s.Logger).Info("user registered",
		"event", "user_registered",
		"module", moduleName,
		"layer", "application",
		"user_id", user.ID,
	)
	return user, nil
}

// Authenticate checks the credentials and issues an access token. Unknown
// emails and wrong passwords fail the same way.
func (s Service) Authenticate(ctx context.Context, email string, password string) (Session, error) {
	email = entities.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, domainerrors.ErrInvalidRequest
	}
	user, err := s.Repo.FindByEmail(ctx, email)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		return Session{}, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := s.Hasher.Compare(user.PasswordHash, password); err != nil {
		resolveLogger(s.Logger).Info("login rejected",
			"event", "user_login_rejected",
			"module", moduleName,
			"layer", "application",
			"user_id", user.ID,
		)
		return Session{}, domainerrors.ErrInvalidCredentials
	}
	token, expiresAt, err := s.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s Service) Me(ctx context.Context, principal int64) (entities.User, error) {
	if principal <= 0 {
		return entities.User{}, domainerrors.ErrUnauthenticated
	}
	return s.Repo.GetUser(ctx, principal)
}

func (s Service) UpdateProfile(ctx context.Context, principal int64, update ProfileUpdate) (entities.User, error) {
	if principal <= 0 {
		return entities.User{}, domainerrors.ErrUnauthenticated
	}
	var user entities.User
	err := s.Tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.Repo.GetUser(ctx, principal)
		if err != nil {
			return err
		}
		if update.Firstname != nil {
			current.Firstname = strings.TrimSpace(*update.Firstname)
		}
		if update.Lastname != nil {
			current.Lastname = strings.TrimSpace(*update.Lastname)
		}
		if !current.Validate() {
			return domainerrors.ErrInvalidRequest
		}
		current.UpdatedAt = s.now()
		if err := s.Repo.UpdateUser(ctx, current); err != nil {
			return err
		}
		user = current
		return s.emit(ctx, eventsv1.UserUpdated{UserProfile: profile(current)})
	})
	if err != nil {
		return entities.User{}, err
	}
	return user, nil
}

// Search returns up to ten users whose email or username contains query.
func (s Service) Search(ctx context.Context, principal int64, query string) ([]entities.User, error) {
	if principal <= 0 {
		return nil, domainerrors.ErrUnauthenticated
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []entities.User{}, nil
	}
	return s.Repo.SearchUsers(ctx, query, defaultSearchLimit)
}

func (s Service) emit(ctx context.Context, event eventsv1.UserEvent) error {
	envelope, err := eventsv1.Wrap(event)
	if err != nil {
		return err
	}
	eventID, err := s.IDs.NewID(ctx)
	if err != nil {
		return err
	}
	envelope.EventID = eventID
	envelope.OccurredAt = s.now()
	envelope.Source = eventSource
	envelope.Key = strconv.FormatInt(event.Profile().UserID, 10)
	return s.Outbox.AppendOutbox(ctx, event.Topic(), envelope)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func profile(user entities.User) eventsv1.UserProfile {
	return eventsv1.UserProfile{
		UserID:      user.ID,
		Firstname:   user.Firstname,
		Lastname:    user.Lastname,
		Email:       user.Email,
		Username:    user.Username,
		AvatarColor: user.AvatarColor,
	}
}
