package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// ReadError reports a failed table load. Callers must treat it as terminal
// for the current request and discard any stale reference to the path.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// decoder converts raw file bytes into UTF-8 text.
type decoder struct {
	name   string
	decode func([]byte) ([]byte, error)
}

// decoders is the ordered fallback chain tried on delimited-text files.
// UTF-8 is attempted first; Latin-1 is a total single-byte mapping and
// cannot fail, so the chain always terminates.
var decoders = []decoder{
	{
		name: "utf-8",
		decode: func(data []byte) ([]byte, error) {
			if !utf8.Valid(data) {
				return nil, fmt.Errorf("invalid utf-8 byte sequence")
			}
			return data, nil
		},
	},
	{
		name: "latin-1",
		decode: func(data []byte) ([]byte, error) {
			return charmap.ISO8859_1.NewDecoder().Bytes(data)
		},
	},
}

// Load reads the file at path into a Table. CSV files go through the
// decoder fallback chain; .xlsx workbooks are read from their first sheet.
// Failures are reported as *ReadError.
func Load(path string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadWorkbook(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	var decoded []byte
	var decErr error
	for _, d := range decoders {
		decoded, decErr = d.decode(data)
		if decErr == nil {
			slog.Debug("decoded upload",
				slog.String("path", path),
				slog.String("encoding", d.name))
			break
		}
	}
	if decErr != nil {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("all decodings exhausted: %w", decErr)}
	}

	t, err := Decode(bytes.NewReader(decoded))
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return t, nil
}

// Decode parses UTF-8 delimited text into a Table. The first record is the
// header; the CSV reader enforces a uniform column count across rows.
func Decode(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err == io.EOF {
		// A file with no content at all yields an empty table.
		return NewTable(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse header row: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, record)
	}

	return NewTable(headers, rows), nil
}

// loadWorkbook reads the first sheet of an .xlsx workbook into a Table.
func loadWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return NewTable(nil, nil), nil
	}

	headers := rows[0]
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells; pad back to the header width
		// so the table keeps a uniform column set.
		if len(row) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, row)
			row = padded
		}
		data = append(data, row[:len(headers)])
	}

	return NewTable(headers, data), nil
}
