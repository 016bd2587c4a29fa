package cli

import (
	"context"
	"fmt"
	"os"

	"quranstudy/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	name, err := GetSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	password, err := GetPassword("Enter password", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	confirm, err := GetPassword("Confirm password", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if password != confirm {
		printlnFn("Passwords do not match.")
		return fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}

	if _, err := a.session.SignUp(ctx, email, password, name); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Welcome,", name+"!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	password, err := GetPassword("Enter password", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	id, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Welcome back,", id.DisplayName+"!")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.provider.SignOut(ctx); err != nil {
		printlnFn(err.Error())
		return err
	}
	printlnFn("Logged out.")
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if err := a.provider.ResetPassword(ctx, email); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Password reset email sent.")
	return nil
}
