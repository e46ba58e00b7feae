package main

import (
	"context"
	"fmt"

	"github.com/stephenschool/schoolconnect/core/user"
)

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	usr, err := cli.usrSvc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	sp := user.SetPassword{
		Password:        pwd,
		PasswordConfirm: pwd,
		Name:            usr.Name,
		Username:        usr.Username,
		Email:           usr.Email,
	}
	if err = sp.Validate(cli.validate); err != nil {
		return err
	}

	if _, err = cli.authSvc.ResetPassword(ctx, usr, pwd); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password of %q reset\n", usr.Username)
	return nil
}
