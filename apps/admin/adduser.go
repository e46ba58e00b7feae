package main

import (
	"context"
	"fmt"

	"github.com/stephenschool/schoolconnect/core/user"
)

// addUser creates a user. The password policy applies as it does for the API.
func (cli *commandLine) addUser(ctx context.Context, uname, name, email, pwd string, role user.Role) error {
	if name == "" {
		name = uname
	}
	nu := user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            role,
	}
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s %q (id %d)\n", usr.Role, usr.Username, usr.ID)
	return nil
}
