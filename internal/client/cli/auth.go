package cli

import (
	"context"
	"errors"
)

var errPasswordMismatch = errors.New("passwords do not match")

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// SignUp creates an account and signs in with it.
func (a *App) SignUp(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	confirm, err := getPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		return err
	}
	if confirm != password {
		return errPasswordMismatch
	}

	if err := a.auth.SignUp(ctx, email, password); err != nil {
		return err
	}
	a.println("Account created.")
	return a.signIn(ctx, email, password)
}

func (a *App) SignIn(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	return a.signIn(ctx, email, password)
}

func (a *App) signIn(ctx context.Context, email, password string) error {
	s, err := a.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	a.startSession(s)
	a.println("Signed in as", s.Email)
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errSignedOut
	}
	a.endSession()
	_ = a.auth.SignOut(ctx)
	a.println("Signed out.")
	return nil
}
