// Package spreadsheet reads a list of student names out of an xlsx or csv file.
package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/xuri/excelize/v2"
)

var (
	// errors
	ErrEmpty       = errors.New("file looks empty")
	ErrNoNames     = errors.New("no suitable name list found")
	ErrUnsupported = errors.New("unsupported file type; use .xlsx or .csv")

	// headerTokens are column titles that are never student names.
	headerTokens = []string{"adı", "soyadı", "ad soyad", "adı soyadı", "isim", "öğrenci", "öğrenci adı"}
)

const headerMaxSimilarity = .85

// Result is what the import collaborator hands to the roster.
type Result struct {
	ClassName string   `json:"className"` // suggested, from the file name
	Names     []string `json:"names"`
}

// Parse reads the first sheet of an xlsx file (or a csv file) and detects its name column.
func Parse(r io.Reader, filename string) (Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, err = ReadXLSX(r)
	case ".csv", ".txt":
		rows, err = ReadCSV(r)
	default:
		return Result{}, ErrUnsupported
	}
	if err != nil {
		return Result{}, err
	}
	if len(rows) == 0 {
		return Result{}, ErrEmpty
	}

	names := DetectNames(rows)
	if len(names) == 0 {
		return Result{}, ErrNoNames
	}
	return Result{ClassName: SuggestClassName(filename), Names: names}, nil
}

// ReadXLSX returns the rows of the first sheet.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening excel file")
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheetName)
	}
	return rows, nil
}

// ReadCSV returns every record. The delimiter (',' or ';') is guessed from the first line.
func ReadCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	head, _ := br.Peek(4096) // fewer bytes on short input
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		cr.Comma = ';'
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}
	return rows, nil
}

// DetectNames picks the column holding the most name-like cells (text of more than 2 characters
// that is not a number) and returns its text cells, minus header-like titles.
// On a tie the leftmost column wins.
func DetectNames(rows [][]string) []string {
	numCols := 0
	for _, row := range rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}
	if numCols == 0 {
		return nil
	}

	scores := make([]int, numCols)
	for _, row := range rows {
		for col, cell := range row {
			cell = strings.TrimSpace(cell)
			if isText(cell) && utf8.RuneCountInString(cell) > 2 {
				scores[col]++
			}
		}
	}
	best := 0
	for col, score := range scores {
		if score > scores[best] {
			best = col
		}
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if best >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[best])
		if !isText(cell) || utf8.RuneCountInString(cell) <= 1 || isHeader(cell) {
			continue
		}
		names = append(names, cell)
	}
	return names
}

// SuggestClassName strips the directory and the extension: "docs/6D.xlsx" -> "6D".
func SuggestClassName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// isText reports whether a cell would be read as text rather than a number.
func isText(cell string) bool {
	if cell == "" {
		return false
	}
	if _, err := strconv.ParseFloat(cell, 64); err == nil && strings.ContainsAny(cell, "0123456789") {
		return false
	}
	return true
}

func isHeader(cell string) bool {
	lower := strings.ToLower(cell)
	for _, token := range headerTokens {
		if lower == token || similarity(lower, token) >= headerMaxSimilarity {
			return true
		}
	}
	return false
}

func similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
