// Package services holds the client application services the CLI calls:
// account actions, note actions with the password gate, analysis with
// fallback, and editor auto-save.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

type AuthService interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignOut(ctx context.Context) error
	Session() (models.Session, bool)
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	logger logging.Logger
}

func NewAuthService(c client.Client, logger logging.Logger) AuthService {
	return &authService{client: c, logger: logger.With("module", "auth")}
}

// SignUp validates the credentials locally before asking the server.
func (a *authService) SignUp(ctx context.Context, email, password string) error {
	if err := common.ValidateEmail(email); err != nil {
		return err
	}
	if err := common.ValidatePassword(password); err != nil {
		return err
	}
	if err := a.client.SignUp(ctx, common.NormalizeEmail(email), password); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

func (a *authService) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	if err := common.ValidateEmail(email); err != nil {
		return models.Session{}, err
	}
	s, err := a.client.SignIn(ctx, common.NormalizeEmail(email), password)
	if err != nil {
		return models.Session{}, fmt.Errorf("sign in: %w", err)
	}
	a.logger.Debug(ctx, "signed in", "user_id", s.UserID)
	return s, nil
}

func (a *authService) SignOut(ctx context.Context) error {
	if err := a.client.SignOut(ctx); err != nil {
		a.logger.Warn(ctx, "server sign out failed, local session cleared", "error", err)
	}
	return nil
}

func (a *authService) Session() (models.Session, bool) {
	return a.client.CurrentSession()
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
