package main

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core/user"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := user.ValidatePassword(pwd, usr.FirstName, usr.LastName, usr.Email); err != nil {
		return err
	}
	if _, err := cli.usrSvc.SetPassword(ctx, usr.ID, pwd); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password of %s reset\n", usr.Email)
	return nil
}
