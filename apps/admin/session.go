package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ams/core/user"
)

func (cli *commandLine) login(email, pwd string) error {
	if cli.session == nil {
		return errNoAPI
	}
	if err := cli.session.Login(context.Background(), email, pwd); err != nil {
		return err
	}
	usr, _ := cli.session.User()
	fmt.Fprintf(cli.out, "signed in as %s (%s)\n", usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) logout() error {
	if cli.session == nil {
		return errNoAPI
	}
	cli.session.Logout()
	fmt.Fprintln(cli.out, "signed out")
	return nil
}

// whoami prints the signed in user, fetching the profile a restored token lacks.
func (cli *commandLine) whoami() error {
	if cli.session == nil {
		return errNoAPI
	}
	if err := cli.session.Bootstrap(context.Background()); err != nil && err != user.ErrUnauthenticated {
		return err
	}
	usr, ok := cli.session.User()
	if !ok {
		fmt.Fprintln(cli.out, "not signed in")
		return nil
	}
	fmt.Fprintf(cli.out, "%s <%s> (%s)\n", usr.Name, usr.Email, usr.Role)
	return nil
}
