package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"kanvas/contexts/identity-access/user-service/adapters/crypto"
	domainerrors "kanvas/contexts/identity-access/user-service/domain/errors"
	httptransport "kanvas/contexts/identity-access/user-service/transport/http"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/faults"
	"kanvas/internal/platform/auth"
)

func newTestModule(t *testing.T) (Module, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", "kanvas", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return NewInMemoryModule(tokens, crypto.BcryptHasher{Cost: 4}, nil, nil), tokens
}

func register(t *testing.T, module Module, username string, email string) httptransport.UserResponse {
	t.Helper()
	user, err := module.Handler.RegisterHandler(context.Background(), httptransport.RegisterRequest{
		Firstname: "Ada",
		Lastname:  "Lovelace",
		Email:     email,
		Username:  username,
		Password:  "analytical-engine",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestRegisterPublishesUserCreated(t *testing.T) {
	module, _ := newTestModule(t)
	user := register(t, module, "ada", "Ada@Example.com")
	if user.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.AvatarColor == "" {
		t.Fatalf("expected avatar colour")
	}

	messages := module.Store.OutboxEvents()
	if len(messages) != 1 || messages[0].Topic != eventsv1.TopicUser {
		t.Fatalf("expected one user.events message, got %+v", messages)
	}
	var env eventsv1.Envelope
	if err := json.Unmarshal(messages[0].Payload, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	event, err := eventsv1.DecodeUserEvent(env)
	if err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if _, ok := event.(*eventsv1.UserCreated); !ok {
		t.Fatalf("expected *UserCreated, got %T", event)
	}
	if event.Profile().UserID != user.ID || event.Profile().AvatarColor != user.AvatarColor {
		t.Fatalf("unexpected profile: %+v", event.Profile())
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	module, _ := newTestModule(t)
	register(t, module, "ada", "ada@example.com")

	_, err := module.Handler.RegisterHandler(context.Background(), httptransport.RegisterRequest{
		Firstname: "Other", Lastname: "Person", Email: "ADA@example.com", Username: "someone", Password: "password123",
	})
	if !errors.Is(err, domainerrors.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	_, err = module.Handler.RegisterHandler(context.Background(), httptransport.RegisterRequest{
		Firstname: "Other", Lastname: "Person", Email: "other@example.com", Username: "ada", Password: "password123",
	})
	if !errors.Is(err, domainerrors.ErrUsernameTaken) || !errors.Is(err, faults.ErrConflict) {
		t.Fatalf("expected ErrUsernameTaken conflict, got %v", err)
	}
	if got := len(module.Store.OutboxEvents()); got != 1 {
		t.Fatalf("expected only the first registration in the outbox, got %d", got)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	module, _ := newTestModule(t)
	_, err := module.Handler.RegisterHandler(context.Background(), httptransport.RegisterRequest{
		Firstname: "Ada", Lastname: "Lovelace", Email: "ada@example.com", Username: "ada", Password: "short",
	})
	if !errors.Is(err, faults.ErrInvalid) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestAuthenticateIssuesVerifiableToken(t *testing.T) {
	module, tokens := newTestModule(t)
	user := register(t, module, "ada", "ada@example.com")

	response, err := module.Handler.AuthenticateHandler(context.Background(), httptransport.AuthenticateRequest{
		Email:    "ada@example.com",
		Password: "analytical-engine",
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	principal, err := tokens.Verify(response.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal != user.ID {
		t.Fatalf("expected principal %d, got %d", user.ID, principal)
	}

	for _, request := range []httptransport.AuthenticateRequest{
		{Email: "ada@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "analytical-engine"},
	} {
		_, err := module.Handler.AuthenticateHandler(context.Background(), request)
		if !errors.Is(err, domainerrors.ErrInvalidCredentials) || !errors.Is(err, faults.ErrUnauthenticated) {
			t.Fatalf("expected invalid credentials for %s, got %v", request.Email, err)
		}
	}
}

func TestUpdateProfilePublishesUserUpdated(t *testing.T) {
	module, _ := newTestModule(t)
	user := register(t, module, "ada", "ada@example.com")
	name := "Augusta"
	updated, err := module.Handler.UpdateProfileHandler(context.Background(), user.ID, httptransport.UpdateProfileRequest{Firstname: &name})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Firstname != "Augusta" || updated.Lastname != "Lovelace" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
	messages := module.Store.OutboxEvents()
	if messages[len(messages)-1].EventType != eventsv1.TypeUserUpdated {
		t.Fatalf("expected %s, got %s", eventsv1.TypeUserUpdated, messages[len(messages)-1].EventType)
	}

	if _, err := module.Handler.MeHandler(context.Background(), 0); !errors.Is(err, faults.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	me, err := module.Handler.MeHandler(context.Background(), user.ID)
	if err != nil || me.Firstname != "Augusta" {
		t.Fatalf("unexpected me: %+v %v", me, err)
	}
}

func TestSearchMatchesEmailOrUsername(t *testing.T) {
	module, _ := newTestModule(t)
	ada := register(t, module, "ada", "ada@example.com")
	register(t, module, "grace", "grace@navy.mil")

	result, err := module.Handler.SearchUsersHandler(context.Background(), ada.ID, "NAVY")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Users) != 1 || result.Users[0].Username != "grace" {
		t.Fatalf("unexpected search result: %+v", result.Users)
	}
	empty, err := module.Handler.SearchUsersHandler(context.Background(), ada.ID, "  ")
	if err != nil || len(empty.Users) != 0 {
		t.Fatalf("expected empty result for blank query, got %+v %v", empty.Users, err)
	}
}
