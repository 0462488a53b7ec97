package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ams/core"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd, role string) error {
	if cli.usrSvc == nil {
		return errNoDatabase
	}
	usr, err := cli.usrSvc.UpsertAdmin(context.Background(), name, email, pwd, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "saved %s (%s)\n", usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	if cli.usrSvc == nil {
		return errNoDatabase
	}
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, core.CleanString(email))
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.UpsertAdmin(ctx, "", usr.Email, pwd, usr.Role)
	return err
}

func (cli *commandLine) health() error {
	status := cli.api.Health(context.Background())
	if !status.OK {
		return fmt.Errorf("unhealthy: %s", status.Error)
	}
	if status.Message != "" {
		fmt.Fprintln(cli.out, "ok:", status.Message)
	} else {
		fmt.Fprintln(cli.out, "ok")
	}
	return nil
}
