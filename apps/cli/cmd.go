package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/scorebook/apps/workspace"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	ws         *workspace.Workspace
	out        io.Writer
	validate   *validator.Validate
	translator ut.Translator
	dsn        string                          // postgres database of the migrate command
	serve      func(ctx context.Context) error // runs the HTTP API
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  signup -username NAME                 - create an account and log into it (password prompted)")
	fmt.Fprintln(cli.out, "  login -username NAME                  - log into an account (password prompted)")
	fmt.Fprintln(cli.out, "  logout                                - end the session")
	fmt.Fprintln(cli.out, "  whoami                                - show the active account")
	fmt.Fprintln(cli.out, "  account delete -username NAME         - delete an account and its data")
	fmt.Fprintln(cli.out, "  class add|list|rename|delete|move|import")
	fmt.Fprintln(cli.out, "  student add|list|rename|delete|move")
	fmt.Fprintln(cli.out, "  score set -class ID -student ID -criterion ID -value N")
	fmt.Fprintln(cli.out, "  criteria list|add|update|delete|reset")
	fmt.Fprintln(cli.out, "  stats                                 - averages per class and per criterion")
	fmt.Fprintln(cli.out, "  export [-format json|yaml] [-o PATH]  - export all data")
	fmt.Fprintln(cli.out, "  clear -yes                            - delete all data")
	fmt.Fprintln(cli.out, "  backup -email EMAIL [-name NAME]      - mail a json export")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                - run a migration command on the postgres storage")
	fmt.Fprintln(cli.out, "  serve                                 - start the HTTP API")
	fmt.Fprintln(cli.out, "Run a command with -h for its flags.")
}

// run executes the command in args; args[0] is the program name.
func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "signup":
		return cli.signup(ctx, rest)
	case "login":
		return cli.login(ctx, rest)
	case "logout":
		return cli.logout(ctx)
	case "whoami":
		return cli.whoami(ctx)
	case "account":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"delete": cli.deleteAccount,
		})
	case "class":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"add":    cli.addClass,
			"list":   cli.listClasses,
			"rename": cli.renameClass,
			"delete": cli.deleteClass,
			"move":   cli.moveClass,
			"import": cli.importClass,
		})
	case "student":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"add":    cli.addStudent,
			"list":   cli.listStudents,
			"rename": cli.renameStudent,
			"delete": cli.deleteStudent,
			"move":   cli.moveStudent,
		})
	case "score":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"set": cli.setScore,
		})
	case "criteria":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"list":   cli.listCriteria,
			"add":    cli.addCriterion,
			"update": cli.updateCriterion,
			"delete": cli.deleteCriterion,
			"reset":  cli.resetCriteria,
		})
	case "stats":
		return cli.stats(ctx)
	case "export":
		return cli.export(ctx, rest)
	case "clear":
		return cli.clear(ctx, rest)
	case "backup":
		return cli.backup(ctx, rest)
	case "migrate":
		return cli.migrate(ctx, rest)
	case "serve":
		if cli.serve == nil {
			return newArgumentError("serve is not available")
		}
		return cli.serve(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

type subcommand func(ctx context.Context, name string, args []string) error

func (cli *commandLine) dispatch(ctx context.Context, cmd string, args []string, subs map[string]subcommand) error {
	if len(args) > 0 {
		if fn, ok := subs[args[0]]; ok {
			return fn(ctx, cmd+" "+args[0], args[1:])
		}
	}
	fmt.Fprintf(cli.out, "Usage of %s:\n", cmd)
	for _, name := range sortedKeys(subs) {
		fmt.Fprintf(cli.out, "  %s %s\n", cmd, name)
	}
	return errHelp
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

// requireFlags prints the usage when one of the string values is empty.
func requireFlags(fs *flag.FlagSet, values ...string) error {
	for _, v := range values {
		if v == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

// isSet reports whether the flag was given on the command line.
func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}
