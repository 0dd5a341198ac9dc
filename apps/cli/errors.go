package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
)

// argumentError is a command line mistake the flag package cannot catch.
type argumentError struct {
	msg string
}

func newArgumentError(format string, args ...interface{}) *argumentError {
	return &argumentError{fmt.Sprintf(format, args...)}
}

func (err *argumentError) Error() string {
	return err.msg
}

// printError writes err for a human; validation errors get one line per field.
func printError(w io.Writer, err error) {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		fmt.Fprintln(w, "\nerror: invalid input")
		for _, fErr := range vErr.Fields {
			fmt.Fprintf(w, "  %s: %s\n", fErr.Field, fErr.Error)
		}
		return
	}
	fmt.Fprintf(w, "\nerror: %s\n", err)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
