package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for operator credentials and authenticates against the
// backend. The configured user name is offered as the default.
//
// When the backend cannot be reached the mode switches to offline and the
// error is returned; records can still be cached and are pushed after a
// later login.
func (a *App) Login(ctx context.Context) error {
	prompt := "Enter user name"
	if a.userName != "" {
		prompt += " [" + a.userName + "]"
	}
	userName, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if userName == "" {
		userName = a.userName
	}
	if userName == "" {
		return ErrInvalidInput
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.backend.Login(ctx, userName, string(password)); err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		a.log.Warn(ctx, "login failed", "user", userName, "error", err)
		return err
	}

	a.userName = userName
	a.setMode(ModeOnline)
	a.println("Login successful")
	return nil
}
