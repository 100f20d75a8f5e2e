// Package service contains the business logic layer: validation, rules,
// and orchestration between repositories and the auth utilities. Services
// know nothing about HTTP; handlers translate their domain errors to
// status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/auth"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/repository"
)

// Profile carries the optional profile fields that accompany an external
// identity. Missing fields stay empty strings.
type Profile struct {
	Username    string
	DisplayName string
	PfpURL      string
}

// AuthService reconciles verified external identities to local users and
// issues sessions.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	signIn   *auth.SignInVerifier
	provider *auth.Provider
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. signIn and provider may be nil
// when the corresponding credential path is not configured; Reconcile and
// session validation still work.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	signIn *auth.SignInVerifier,
	provider *auth.Provider,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		signIn:   signIn,
		provider: provider,
		logger:   logger,
	}
}

// AuthResult bundles the reconciled user with the issued session token so
// the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Reconcile maps a verified external identity to exactly one local user.
//
// If a user with this FID exists, profile fields are refreshed and the
// existing record returned; otherwise a new user is inserted. Calling
// twice with the same FID never creates two users: the lookup handles the
// common case and the store's UNIQUE(fid) constraint handles the
// first-sign-in race.
//
// The caller must have verified the credential already — this method
// trusts its fid argument.
func (s *AuthService) Reconcile(ctx context.Context, fid string, profile Profile) (*model.User, error) {
	fid = strings.TrimSpace(fid)
	if fid == "" {
		return nil, apperror.ValidationFailed("fid", "farcaster id is required")
	}

	user := &model.User{
		FID:         fid,
		Username:    strings.TrimSpace(profile.Username),
		DisplayName: strings.TrimSpace(profile.DisplayName),
		PfpURL:      strings.TrimSpace(profile.PfpURL),
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.Error("failed to reconcile user",
			slog.String("fid", fid),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("reconciling user (fid=%s): %w", fid, err)
	}

	s.logger.Info("user reconciled",
		slog.String("userID", user.ID),
		slog.String("fid", fid),
	)

	return user, nil
}

// SignInWithMessage verifies a signed sign-in token, reconciles the
// identity it carries, and issues a session.
//
// Expired and malformed tokens fail before any database access, with a
// 401-mapped error either way.
func (s *AuthService) SignInWithMessage(ctx context.Context, token string) (*AuthResult, error) {
	if s.signIn == nil {
		return nil, apperror.Unauthorized("sign-in messages are not configured")
	}

	claims, err := s.signIn.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return nil, apperror.Unauthorized("sign-in token expired")
		case errors.Is(err, auth.ErrTokenMalformed):
			return nil, apperror.Unauthorized("sign-in token malformed")
		default:
			return nil, apperror.Unauthorized("sign-in token invalid")
		}
	}

	user, err := s.Reconcile(ctx, claims.FID, Profile{
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		PfpURL:      claims.PfpURL,
	})
	if err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

// LoginURL returns the provider's authorization page URL for the given
// CSRF state.
func (s *AuthService) LoginURL(state string) (string, error) {
	if s.provider == nil {
		return "", apperror.Unauthorized("OAuth sign-in is not configured")
	}
	return s.provider.AuthURL(state), nil
}

// SignInWithCode completes the OAuth path: exchanges the authorization
// code at the identity provider, then reconciles and issues a session.
// Provider failures surface as upstream errors, not auth errors — the
// user did nothing wrong.
func (s *AuthService) SignInWithCode(ctx context.Context, code string) (*AuthResult, error) {
	if s.provider == nil {
		return nil, apperror.Unauthorized("OAuth sign-in is not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "authorization code is required")
	}

	providerUser, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("provider exchange failed", slog.String("error", err.Error()))
		return nil, apperror.Upstream("identity provider", err)
	}

	user, err := s.Reconcile(ctx, providerUser.FID.String(), Profile{
		Username:    providerUser.Username,
		DisplayName: providerUser.DisplayName,
		PfpURL:      providerUser.PfpURL,
	})
	if err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

func (s *AuthService) issueSession(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating session for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for an internal ID. Used by /api/me after
// the middleware validates the session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}
	return s.users.GetUserByID(ctx, id)
}
