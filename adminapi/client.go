// Package adminapi is a typed client for the eostre admin and location
// services. Every call goes through the request gateway, so it carries the
// session's bearer token and survives one token expiry.
package adminapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agbs2k8/eostre/gateway"
	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/go-playground/validator/v10"
)

const (
	UserMePath             = "/api/v1/user/me"
	AuthorizedAccountsPath = "/api/v1/user/authorized_accounts"
	AccountUsersPath       = "/api/v1/account/user"
	RolesPath              = "/api/v1/role"
	LocationsPath          = "/api/locationserv/location"
	EmailValidatePath      = "/v1api/email/validate"
)

type Client struct {
	Users     *UsersService
	Accounts  *AccountsService
	Roles     *RolesService
	Locations *LocationsService
	Email     *EmailService
}

type service struct {
	gw       *gateway.Gateway
	validate *validator.Validate
}

func New(gw *gateway.Gateway) *Client {
	s := &service{gw: gw, validate: validator.New()}
	return &Client{
		Users:     (*UsersService)(s),
		Accounts:  (*AccountsService)(s),
		Roles:     (*RolesService)(s),
		Locations: (*LocationsService)(s),
		Email:     (*EmailService)(s),
	}
}

type UsersService service

// Me returns the caller's profile.
func (s *UsersService) Me(ctx context.Context) (*UserProfile, error) {
	return getJSON[*UserProfile](ctx, s.gw, UserMePath)
}

// UpdateMe applies the non-nil fields of update and returns the stored
// profile.
func (s *UsersService) UpdateMe(ctx context.Context, update ProfileUpdate) (*UserProfile, error) {
	if update.empty() {
		return nil, fmt.Errorf("%w: profile update has no fields", apperrors.ErrInvalidInput)
	}
	if err := s.validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}

	profile, err := gateway.Do[*UserProfile](ctx, s.gw, UserMePath, gateway.Options{
		Method: http.MethodPost,
		Body:   update,
	})
	if err != nil {
		return nil, fmt.Errorf("adminapi: update profile: %w", err)
	}
	return profile, nil
}

// AuthorizedAccounts lists the accounts the caller holds an active grant in.
func (s *UsersService) AuthorizedAccounts(ctx context.Context) ([]Account, error) {
	return getJSON[[]Account](ctx, s.gw, AuthorizedAccountsPath)
}

type AccountsService service

// Users lists the members of the caller's active account.
func (s *AccountsService) Users(ctx context.Context) ([]AccountUser, error) {
	return getJSON[[]AccountUser](ctx, s.gw, AccountUsersPath)
}

type RolesService service

func (s *RolesService) List(ctx context.Context) ([]Role, error) {
	return getJSON[[]Role](ctx, s.gw, RolesPath)
}

type LocationsService service

// List returns the locations of the caller's active account.
func (s *LocationsService) List(ctx context.Context) ([]Location, error) {
	page, err := getJSON[struct {
		Data []Location `json:"data"`
	}](ctx, s.gw, LocationsPath)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

type EmailService service

// Validate redeems an email validation token and returns the server's
// result message. It does not need a session.
func (s *EmailService) Validate(ctx context.Context, token string) (string, error) {
	if err := s.validate.Var(token, "required"); err != nil {
		return "", fmt.Errorf("%w: validation token is required", apperrors.ErrInvalidInput)
	}

	resp, err := gateway.Do[struct {
		Result string `json:"result"`
	}](ctx, s.gw, EmailValidatePath, gateway.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"token": token},
	})
	if err != nil {
		return "", fmt.Errorf("adminapi: validate email: %w", err)
	}
	return resp.Result, nil
}

func getJSON[T any](ctx context.Context, gw *gateway.Gateway, path string) (T, error) {
	out, err := gateway.Do[T](ctx, gw, path, gateway.Options{Method: http.MethodGet})
	if err != nil {
		return out, fmt.Errorf("adminapi: get %s: %w", path, err)
	}
	return out, nil
}
