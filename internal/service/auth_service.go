package service

import (
	"errors"
	"strings"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo domain.UserRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	IsNewUser bool
}

// AuthenticateUser handles the authentication flow after the Auth0 callback.
// A first login creates the user together with the default categories.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name *string) (*AuthResult, error) {
	if auth0ID == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err == nil {
		log.Info().Int32("user_id", user.ID).Msg("Existing user authenticated")
		return &AuthResult{User: user}, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to get user")
		return nil, err
	}

	user, err = s.userRepo.CreateWithCategories(&domain.User{
		Auth0ID:  auth0ID,
		Username: usernameFor(email, name),
		Email:    email,
	}, domain.DefaultCategories)
	if err != nil {
		// A concurrent first login may have created the user already
		if errors.Is(err, domain.ErrConflict) {
			existing, getErr := s.userRepo.GetByAuth0ID(auth0ID)
			if getErr == nil {
				return &AuthResult{User: existing}, nil
			}
		}
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create user")
		return nil, err
	}

	log.Info().Int32("user_id", user.ID).Int("categories", len(domain.DefaultCategories)).Msg("Created new user with default categories")
	return &AuthResult{User: user, IsNewUser: true}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id int32) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// GetUserIDByAuth0ID resolves an Auth0 subject to the local user ID
func (s *AuthService) GetUserIDByAuth0ID(auth0ID string) (int32, error) {
	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

const maxUsernameLength = 50

// usernameFor picks the display username: the profile name when present,
// otherwise the local part of the email. Capped at maxUsernameLength runes.
func usernameFor(email string, name *string) string {
	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}
	if name != nil {
		if trimmed := strings.TrimSpace(*name); trimmed != "" {
			username = trimmed
		}
	}
	if runes := []rune(username); len(runes) > maxUsernameLength {
		username = string(runes[:maxUsernameLength])
	}
	return username
}
