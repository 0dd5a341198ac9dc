package main

import (
	"context"
	"fmt"

	"github.com/trezcool/scorebook/core/user"
)

func (cli *commandLine) signup(ctx context.Context, args []string) error {
	fs := cli.flagSet("signup")
	uname := fs.String("username", "", "The account name. The password will be prompted next.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *uname); err != nil {
		return err
	}
	pwd, err := cli.promptPassword(fs)
	if err != nil {
		return err
	}

	usr, err := cli.ws.Signup(ctx, user.NewUser{Username: *uname, Password: pwd})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Welcome %s!\n", usr.DisplayName)
	return nil
}

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.flagSet("login")
	uname := fs.String("username", "", "The account name. The password will be prompted next.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *uname); err != nil {
		return err
	}
	pwd, err := cli.promptPassword(fs)
	if err != nil {
		return err
	}

	usr, err := cli.ws.Login(ctx, user.Credentials{Username: *uname, Password: pwd})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s\n", usr.DisplayName)
	return nil
}

func (cli *commandLine) logout(ctx context.Context) error {
	if err := cli.ws.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Logged out")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	if !cli.ws.IsMultiUser() {
		fmt.Fprintln(cli.out, "single-user mode")
		return nil
	}
	name, err := cli.ws.DisplayName(ctx)
	if err != nil {
		return err
	}
	if name == "" {
		fmt.Fprintln(cli.out, "not logged in")
		return nil
	}
	fmt.Fprintf(cli.out, "%s (%s)\n", name, cli.ws.Users().Current())
	return nil
}

func (cli *commandLine) deleteAccount(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	uname := fs.String("username", "", "The account to delete, with all its data.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *uname); err != nil {
		return err
	}
	if !cli.ws.IsMultiUser() {
		return newArgumentError("accounts are disabled in single-user mode")
	}
	if err := cli.ws.Users().Delete(ctx, *uname); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Account %q deleted\n", *uname)
	return nil
}
