// FilePath: internal/hubservice/hubservice.auth.go
package hubservice

import (
	"context"
	"net/mail"
	"strings"

	"github.com/secador-solar/sensorhub/internal/auth"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/logging"
	"github.com/secador-solar/sensorhub/internal/models"
)

const invalidCredentials = "incorrect username or password"

// Register creates an operator account. Duplicate usernames or emails are
// reported as conflicts.
func (s *HubService) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, errors.NewValidationError("username is required", nil)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, errors.NewValidationError("email is not valid", err)
	}
	if in.Password == "" {
		return nil, errors.NewValidationError("password is required", nil)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	logging.L.Infof("[AuthService] Registered user %s (%s)", user.Username, user.ID)
	return user, nil
}

// Authenticate checks credentials. Unknown users and wrong passwords yield
// the same authentication error.
func (s *HubService) Authenticate(ctx context.Context, creds models.Credentials) (*models.User, error) {
	user, err := s.Users.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewAuthError(invalidCredentials, nil)
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, creds.Password) {
		return nil, errors.NewAuthError(invalidCredentials, nil)
	}
	return user, nil
}

// Login authenticates and issues an access token.
func (s *HubService) Login(ctx context.Context, creds models.Credentials) (*models.Token, error) {
	user, err := s.Authenticate(ctx, creds)
	if err != nil {
		logging.L.Infof("[AuthService] Failed login for %q", creds.Username)
		return nil, err
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &models.Token{
		AccessToken: token,
		TokenType:   auth.TokenType,
		ExpiresIn:   int64(s.Tokens.TTL().Seconds()),
	}, nil
}

// VerifyToken resolves a bearer token to the user it was issued for. Tokens
// of deleted or renamed accounts are rejected.
func (s *HubService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewAuthError("could not validate credentials", nil)
		}
		return nil, err
	}
	if user.Username != claims.Subject {
		return nil, errors.NewAuthError("could not validate credentials", nil)
	}
	return user, nil
}
