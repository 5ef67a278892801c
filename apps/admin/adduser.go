package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

// addUser creates the user, or updates the names, role & password of the user that already has nu.Email.
func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser) error {
	nu.Clean()
	if !nu.Role.Valid() {
		return errors.Errorf("invalid role %q", nu.Role)
	}
	if err := user.ValidatePassword(nu.Password, nu.FirstName, nu.LastName, nu.Email); err != nil {
		return err
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, nu.Email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr, err = cli.usrSvc.Create(ctx, nu)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "user %s created (%s)\n", usr.Email, usr.Role)
		return nil
	}

	usr, err = cli.usrSvc.Update(ctx, usr.ID, user.UpdateUser{
		FirstName: &nu.FirstName,
		LastName:  &nu.LastName,
		Role:      &nu.Role,
		Password:  &nu.Password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "user %s updated (%s)\n", usr.Email, usr.Role)
	return nil
}
