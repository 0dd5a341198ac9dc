package main

import (
	"context"
	"fmt"

	"github.com/trezcool/scorebook/apps/shared"
)

func (cli *commandLine) listCriteria(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}

	tw := cli.table()
	fmt.Fprintln(tw, "ID\tICON\tNAME\tMAX")
	for _, c := range book.Criteria() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c.ID, c.Icon, c.Name, c.MaxScore)
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%d\n", book.MaxTotal())
	return tw.Flush()
}

func (cli *commandLine) addCriterion(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	criterionName := fs.String("name", "", "The criterion name.")
	maxScore := fs.Int("max", 0, "The maximum score, 1 to 100. 0 means the default (10).")
	icon := fs.String("icon", "", "An emoji shown next to the name.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	data := shared.CriterionRequest{Name: *criterionName, MaxScore: *maxScore, Icon: *icon}
	if err := data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	c, err := book.AddCriterion(ctx, data.Name, data.MaxScore, data.Icon)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Criterion %q added (max %d): %s\n", c.Name, c.MaxScore, c.ID)
	return nil
}

func (cli *commandLine) updateCriterion(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	id := fs.String("id", "", "The criterion ID.")
	criterionName := fs.String("name", "", "The new name.")
	maxScore := fs.Int("max", 0, "The new maximum score, 1 to 100. Scores above it are lowered.")
	icon := fs.String("icon", "", "The new icon.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *id); err != nil {
		return err
	}

	var data shared.CriterionUpdateRequest
	if isSet(fs, "name") {
		data.Name = criterionName
	}
	if isSet(fs, "max") {
		data.MaxScore = maxScore
	}
	if isSet(fs, "icon") {
		data.Icon = icon
	}
	if data.Name == nil && data.MaxScore == nil && data.Icon == nil {
		fs.Usage()
		return errHelp
	}
	if err := data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	if _, err = book.Criterion(*id); err != nil {
		return err
	}
	if err = book.UpdateCriterion(ctx, *id, data.Update()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Criterion updated, max total is now %d\n", book.MaxTotal())
	return nil
}

func (cli *commandLine) deleteCriterion(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	id := fs.String("id", "", "The criterion ID. Its scores are deleted too.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *id); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	if _, err = book.Criterion(*id); err != nil {
		return err
	}
	if err = book.DeleteCriterion(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Criterion deleted, max total is now %d\n", book.MaxTotal())
	return nil
}

func (cli *commandLine) resetCriteria(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	if err = book.ResetCriteria(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Criteria reset, max total is now %d\n", book.MaxTotal())
	return nil
}
