package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/mmynk/storefront/internal/apierr"
	"github.com/mmynk/storefront/internal/gateway"
	"github.com/mmynk/storefront/internal/models"
)

// Session is the part of the session store the auth service writes.
type Session interface {
	Set(token string, user *models.User)
	SetUser(user *models.User)
	User() *models.User
	Clear()
}

// AuthService logs the caller in and out and manages their profile.
type AuthService struct {
	sender  Sender
	session Session
	logger  *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(sender Sender, session Session, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		sender:  sender,
		session: session,
		logger:  logger,
	}
}

// Login authenticates and stores the token and user in the session.
// The login response looks like {user, access_token, refresh_token}.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, &apierr.Error{Kind: apierr.KindRequestFailed, Message: "please enter username and password"}
	}

	raw, err := s.sender.Send(ctx, gateway.PathLogin, http.MethodPost, map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	res := gjson.ParseBytes(raw)
	token := res.Get("access_token").String()
	if token == "" {
		token = res.Get("token").String()
	}
	if token == "" {
		return nil, malformed(errors.New("login response has no access_token"))
	}

	var user *models.User
	if u := res.Get("user"); u.IsObject() {
		user = new(models.User)
		if err := json.Unmarshal([]byte(u.Raw), user); err != nil {
			return nil, malformed(err)
		}
	}

	s.session.Set(token, user)
	s.logger.Info("Login successful", "username", username)
	return user, nil
}

// Register creates an account. It does not log in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	raw, err := s.sender.Send(ctx, gateway.PathRegister, http.MethodPost, req)
	if err != nil {
		return nil, err
	}

	res := gjson.ParseBytes(raw)
	if u := res.Get("user"); u.IsObject() {
		raw = json.RawMessage(u.Raw)
	}
	user, err := decodeObject[models.User](raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Profile fetches the caller's profile and refreshes the cached user.
func (s *AuthService) Profile(ctx context.Context) (*models.User, error) {
	raw, err := s.sender.Send(ctx, gateway.PathProfile, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	user, err := decodeObject[models.User](raw)
	if err != nil {
		return nil, err
	}
	s.session.SetUser(user)
	return user, nil
}

// UpdateProfile saves the editable profile fields and refreshes the cached user.
func (s *AuthService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	raw, err := s.sender.Send(ctx, gateway.PathProfile, http.MethodPut, update)
	if err != nil {
		return nil, err
	}
	user, err := decodeObject[models.User](raw)
	if err != nil {
		return nil, err
	}
	s.session.SetUser(user)
	return user, nil
}

// Logout clears the session. It never fails.
func (s *AuthService) Logout() {
	s.session.Clear()
	s.logger.Info("Logged out")
}
