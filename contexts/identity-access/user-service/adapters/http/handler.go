package httpadapter

import (
	"context"
	"fmt"

	"kanvas/contexts/identity-access/user-service/application"
	"kanvas/contexts/identity-access/user-service/domain/entities"
	domainerrors "kanvas/contexts/identity-access/user-service/domain/errors"
	httptransport "kanvas/contexts/identity-access/user-service/transport/http"

	"github.com/go-playground/validator/v10"
)

type Handler struct {
	Service  application.Service
	Validate *validator.Validate
}

func (h Handler) validate(request any) error {
	if h.Validate == nil {
		return nil
	}
	if err := h.Validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrInvalidRequest, err)
	}
	return nil
}

func (h Handler) RegisterHandler(ctx context.Context, request httptransport.RegisterRequest) (httptransport.UserResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.UserResponse{}, err
	}
	user, err := h.Service.Register(ctx, application.Registration{
		Firstname: request.Firstname,
		Lastname:  request.Lastname,
		Email:     request.Email,
		Username:  request.Username,
		Password:  request.Password,
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) AuthenticateHandler(
	ctx context.Context,
	request httptransport.AuthenticateRequest,
) (httptransport.AuthenticationResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.AuthenticationResponse{}, err
	}
	session, err := h.Service.Authenticate(ctx, request.Email, request.Password)
	if err != nil {
		return httptransport.AuthenticationResponse{}, err
	}
	return httptransport.AuthenticationResponse{
		AccessToken: session.Token,
		ExpiresAt:   session.ExpiresAt,
		User:        toUserResponse(session.User),
	}, nil
}

func (h Handler) MeHandler(ctx context.Context, principal int64) (httptransport.UserResponse, error) {
	user, err := h.Service.Me(ctx, principal)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) UpdateProfileHandler(
	ctx context.Context,
	principal int64,
	request httptransport.UpdateProfileRequest,
) (httptransport.UserResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.UserResponse{}, err
	}
	user, err := h.Service.UpdateProfile(ctx, principal, application.ProfileUpdate{
		Firstname: request.Firstname,
		Lastname:  request.Lastname,
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) SearchUsersHandler(ctx context.Context, principal int64, query string) (httptransport.SearchUsersResponse, error) {
	users, err := h.Service.Search(ctx, principal, query)
	if err != nil {
		return httptransport.SearchUsersResponse{}, err
	}
	response := httptransport.SearchUsersResponse{Users: make([]httptransport.UserResponse, 0, len(users))}
	for _, user := range users {
		response.Users = append(response.Users, toUserResponse(user))
	}
	return response, nil
}

func toUserResponse(user entities.User) httptransport.UserResponse {
	return httptransport.UserResponse{
		ID:          user.ID,
		Firstname:   user.Firstname,
		Lastname:    user.Lastname,
		Email:       user.Email,
		Username:    user.Username,
		AvatarColor: user.AvatarColor,
	}
}
