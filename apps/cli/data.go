package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/apps/shared"
	pgkv "github.com/trezcool/scorebook/storage/kv/postgres"
)

var gooseRunFunc = pgkv.RunMigration // mockable

func (cli *commandLine) stats(ctx context.Context) error {
	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	stats := book.Statistics()

	fmt.Fprintf(cli.out, "%d classes, %d students\n", stats.ClassCount, stats.StudentCount)
	fmt.Fprintf(cli.out, "Overall average: %d/%d (%d%%)\n\n", stats.OverallAverage, stats.MaxTotal, stats.OverallPercentage)
	if stats.StudentCount == 0 {
		return nil
	}

	tw := cli.table()
	fmt.Fprintln(tw, "CLASS\tSTUDENTS\tAVERAGE")
	for _, c := range stats.Classes {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", c.Name, c.StudentCount, c.Average)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CRITERION\tAVERAGE\t%")
	for _, c := range stats.Criteria {
		fmt.Fprintf(tw, "%s %s\t%.1f/%d\t%d%%\n", c.Icon, c.Name, c.Average, c.MaxScore, c.Percentage)
	}
	return tw.Flush()
}

func (cli *commandLine) export(ctx context.Context, args []string) error {
	fs := cli.flagSet("export")
	format := fs.String("format", "json", "json or yaml.")
	path := fs.String("o", "", "The output file, - for stdout. Defaults to ogrenci_puanlari_<date>.<format>.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	file, err := cli.ws.Export(ctx, *format)
	if err != nil {
		return err
	}
	if *path == "-" {
		_, err = cli.out.Write(file.Data)
		return err
	}
	if *path == "" {
		*path = file.Name
	}
	if err = os.WriteFile(*path, file.Data, 0o644); err != nil {
		return errors.Wrap(err, "writing export")
	}
	fmt.Fprintf(cli.out, "Exported to %s\n", *path)
	return nil
}

func (cli *commandLine) clear(ctx context.Context, args []string) error {
	fs := cli.flagSet("clear")
	yes := fs.Bool("yes", false, "Confirm that every class, student and score must be deleted.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !*yes {
		return newArgumentError("clear deletes all data; run it again with -yes to confirm")
	}
	if err := cli.ws.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "All data cleared")
	return nil
}

func (cli *commandLine) backup(ctx context.Context, args []string) error {
	fs := cli.flagSet("backup")
	email := fs.String("email", "", "The recipient.")
	name := fs.String("name", "", "The recipient's name.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	data := shared.BackupRequest{Email: *email, Name: *name}
	if err := data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}
	if err := cli.ws.EmailBackup(ctx, data.Address()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Backup sent to %s\n", data.Email)
	return nil
}

// migrate runs a goose command (up, down, status, redo, version...) on the postgres storage.
func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(cli.out, "Usage: migrate up|up-by-one|up-to VERSION|down|down-to VERSION|redo|reset|status|version")
		return errHelp
	}
	return gooseRunFunc(ctx, cli.dsn, args[0], args[1:]...)
}
