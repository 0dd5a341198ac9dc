package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/apps/shared"
	"github.com/trezcool/scorebook/core/roster"
)

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
}

// classes

func (cli *commandLine) addClass(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	className := fs.String("name", "", "The class name, e.g. 6D.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	data := shared.NameRequest{Name: *className}
	if err := data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	class, err := book.AddClass(ctx, data.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Class %q added: %s\n", class.Name, class.ID)
	return nil
}

func (cli *commandLine) listClasses(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}

	tw := cli.table()
	fmt.Fprintln(tw, "#\tID\tNAME\tSTUDENTS")
	for i, class := range book.Classes() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i, class.ID, class.Name, len(class.Students))
	}
	return tw.Flush()
}

func (cli *commandLine) renameClass(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	id := fs.String("id", "", "The class ID.")
	className := fs.String("name", "", "The new name.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *id); err != nil {
		return err
	}
	data := shared.NameRequest{Name: *className}
	if err := data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	class, err := book.RenameClass(ctx, *id, data.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Class renamed to %q\n", class.Name)
	return nil
}

func (cli *commandLine) deleteClass(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	id := fs.String("id", "", "The class ID. Its students are deleted too.")
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
	if err = book.DeleteClass(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Class deleted")
	return nil
}

func (cli *commandLine) moveClass(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	from := fs.Int("from", -1, "The current position (see class list).")
	to := fs.Int("to", -1, "The new position.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	data := shared.MoveRequest{From: from, To: to}
	if err := data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	if err = book.ReorderClasses(ctx, *data.From, *data.To); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Class moved")
	return nil
}

// importClass creates a class from a spreadsheet (-file) or from a comma separated list (-names).
func (cli *commandLine) importClass(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	path := fs.String("file", "", "An .xlsx, .xls or .csv file holding a column of student names.")
	names := fs.String("names", "", "Comma separated student names, instead of -file.")
	className := fs.String("name", "", "The class name. Defaults to the file name.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var class roster.Class
	switch {
	case *path != "":
		f, err := os.Open(*path)
		if err != nil {
			return errors.Wrap(err, "opening import file")
		}
		defer f.Close()

		if class, err = cli.ws.ImportFile(ctx, f, filepath.Base(*path), *className); err != nil {
			return err
		}
	case *names != "":
		data := shared.ImportRequest{ClassName: *className, Names: strings.Split(*names, ",")}
		for i := range data.Names {
			data.Names[i] = strings.TrimSpace(data.Names[i])
		}
		if err := data.Validate(cli.validate, cli.translator); err != nil {
			return err
		}
		var err error
		if class, err = cli.ws.Import(ctx, data.ClassName, data.Names); err != nil {
			return err
		}
	default:
		fs.Usage()
		return errHelp
	}
	fmt.Fprintf(cli.out, "Class %q imported with %d students: %s\n", class.Name, len(class.Students), class.ID)
	return nil
}

// students

func (cli *commandLine) addStudent(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	classID := fs.String("class", "", "The class ID.")
	studentName := fs.String("name", "", "The student's full name.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *classID); err != nil {
		return err
	}
	data := shared.NameRequest{Name: *studentName}
	if err := data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	student, err := book.AddStudent(ctx, *classID, data.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Student %q added: %s\n", student.Name, student.ID)
	return nil
}

func (cli *commandLine) listStudents(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	classID := fs.String("class", "", "The class ID.")
	search := fs.String("search", "", "Only list the students whose name contains this text.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *classID); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	students, err := book.SearchStudents(*classID, *search)
	if err != nil {
		return err
	}
	criteria := book.Criteria()
	maxTotal := book.MaxTotal()

	tw := cli.table()
	header := []string{"#", "ID", "NAME"}
	for _, c := range criteria {
		header = append(header, strings.ToUpper(c.Name))
	}
	header = append(header, "TOTAL", "BAND")
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for i, s := range students {
		row := []string{strconv.Itoa(i), s.ID, s.Name}
		for _, c := range criteria {
			row = append(row, fmt.Sprintf("%d/%d", s.Scores[c.ID], c.MaxScore))
		}
		row = append(row, fmt.Sprintf("%d/%d", s.Total, maxTotal), roster.ScoreBand(s.Total, maxTotal))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (cli *commandLine) renameStudent(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	classID := fs.String("class", "", "The class ID.")
	id := fs.String("id", "", "The student ID.")
	studentName := fs.String("name", "", "The new name.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *classID, *id); err != nil {
		return err
	}
	data := shared.NameRequest{Name: *studentName}
	if err := data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	student, err := book.RenameStudent(ctx, *classID, *id, data.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Student renamed to %q\n", student.Name)
	return nil
}

func (cli *commandLine) deleteStudent(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	classID := fs.String("class", "", "The class ID.")
	id := fs.String("id", "", "The student ID.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *classID, *id); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	if err = book.DeleteStudent(ctx, *classID, *id); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Student deleted")
	return nil
}

func (cli *commandLine) moveStudent(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	classID := fs.String("class", "", "The class ID.")
	from := fs.Int("from", -1, "The current position (see student list).")
	to := fs.Int("to", -1, "The new position.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *classID); err != nil {
		return err
	}
	data := shared.MoveRequest{From: from, To: to}
	if err := data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	if err = book.ReorderStudents(ctx, *classID, *data.From, *data.To); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Student moved")
	return nil
}

// scores

func (cli *commandLine) setScore(ctx context.Context, name string, args []string) error {
	fs := cli.flagSet(name)
	classID := fs.String("class", "", "The class ID.")
	studentID := fs.String("student", "", "The student ID.")
	criterionID := fs.String("criterion", "", "The criterion ID (see criteria list).")
	value := fs.String("value", "", "The score. Decimals are truncated and the value is clamped to 0..max.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, *classID, *studentID, *criterionID, *value); err != nil {
		return err
	}
	raw, err := strconv.ParseFloat(strings.TrimSpace(*value), 64)
	if err != nil {
		return newArgumentError("-value must be a number (got %q)", *value)
	}
	data := shared.ScoreRequest{Value: &raw}
	if err = data.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	book, err := cli.ws.Book(ctx)
	if err != nil {
		return err
	}
	student, err := book.UpdateScore(ctx, *classID, *studentID, *criterionID, *data.Value)
	if student.ID != "" {
		maxTotal := book.MaxTotal()
		fmt.Fprintf(cli.out, "%s: %d (total %d/%d, %s)\n",
			student.Name, student.Scores[*criterionID], student.Total, maxTotal, roster.ScoreBand(student.Total, maxTotal))
	}
	return err
}
