package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/apparel/internal/client/client"
	"github.com/dmitrijs2005/apparel/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in, use 'login' first")

func (a *App) credentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register creates an account. The server opens a session right away, so a
// successful register also logs the user in.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Register(ctx, userName, string(password)); err != nil {
		return err
	}
	a.setUser(userName)
	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, userName, string(password)); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}
	a.setUser(userName)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	err := a.api.Logout(ctx)
	a.setUser("")
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// sessionUser returns the logged-in user or errNotLoggedIn.
func (a *App) sessionUser() (string, error) {
	name := a.user()
	if name == "" {
		return "", errNotLoggedIn
	}
	return name, nil
}

// checkSession clears the local login when the server reports the session
// as gone.
func (a *App) checkSession(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		a.setUser("")
		return fmt.Errorf("%w, please log in again", err)
	}
	return err
}
