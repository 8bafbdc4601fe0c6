// Package spreadsheet reads user rows from uploaded xlsx, xls and csv files
// and writes the directory back out as an xlsx workbook.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/user-directory-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// Export layout
const (
	ExportFilename = "user_list.xlsx"
	ExportSheet    = "Users"
)

// ExportHeader is the fixed column order of exported workbooks
var ExportHeader = []string{"ID", "Name", "Email", "Profile Photo URL"}

// Format is the container format detected for an upload
type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatXLS     Format = "xls"
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatUnknown Format = "unknown"
)

type column int

const (
	columnName column = iota
	columnEmail
	columnPhoto
)

// headerAliases maps a folded header label to the user field it fills
var headerAliases = map[string]column{
	"name":            columnName,
	"email":           columnEmail,
	"profilephotourl": columnPhoto,
	"profilephoto":    columnPhoto,
	"photo":           columnPhoto,
	"photourl":        columnPhoto,
	"avatar":          columnPhoto,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat sniffs the container format of raw upload bytes
func DetectFormat(data []byte) Format {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("text/csv"), mt.Is("text/plain"):
		return FormatCSV
	case mt.Is("text/tab-separated-values"):
		return FormatTSV
	}

	for ; mt != nil; mt = mt.Parent() {
		switch {
		case mt.Is("application/zip"):
			return FormatXLSX
		case mt.Is("application/x-ole-storage"):
			return FormatXLS
		}
	}
	return FormatUnknown
}

// Decode parses the first sheet of a workbook (or a CSV file) into rows keyed
// by the header row. Empty input and header-only input yield no rows.
func Decode(data []byte) ([]models.ImportedRow, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.ImportedRow{}, nil
	}

	var (
		table [][]string
		err   error
	)

	format := DetectFormat(data)
	switch format {
	case FormatXLSX:
		table, err = readXLSX(data)
	case FormatXLS:
		table, err = readXLS(data)
	case FormatCSV, FormatTSV:
		table, err = readDelimited(data, sniffDelimiter(data))
	default:
		return nil, newParseError(format, fmt.Errorf("unrecognized content type %s", mimetype.Detect(data).String()))
	}
	if err != nil {
		return nil, newParseError(format, err)
	}

	return tableToRows(table), nil
}

// Encode writes users to a single-sheet workbook in ExportHeader order.
// Selection state is not exported. A value longer than a cell can hold
// fails with ErrCellTooLong instead of being truncated.
func Encode(users []models.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []string{u.ID, u.Name, u.Email, u.ProfilePhoto}
		row := make([]interface{}, len(values))
		for j, v := range values {
			if n := utf8.RuneCountInString(v); n > excelize.TotalCellChars {
				return nil, fmt.Errorf("%w: row %d column %q has %d characters (max %d)",
					ErrCellTooLong, i+2, ExportHeader[j], n, excelize.TotalCellChars)
			}
			row[j] = v
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

func readXLS(data []byte) (table [][]string, err error) {
	// The BIFF reader panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			table = append(table, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		table = append(table, cells)
	}
	return table, nil
}

func readDelimited(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// sniffDelimiter picks tab over comma when the header line only uses tabs
func sniffDelimiter(data []byte) rune {
	header, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(header, []byte("\t")) > 0 && bytes.Count(header, []byte(",")) == 0 {
		return '\t'
	}
	return ','
}

// tableToRows applies the header rule: the first non-blank row is the header,
// unknown columns are ignored, known columns that are missing stay nil.
func tableToRows(table [][]string) []models.ImportedRow {
	rows := []models.ImportedRow{}

	headerIdx := -1
	for i, r := range table {
		if !isBlank(r) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return rows
	}

	columns := make(map[column]int)
	for i, label := range table[headerIdx] {
		col, ok := headerAliases[foldHeader(label)]
		if !ok {
			continue
		}
		if _, seen := columns[col]; !seen {
			columns[col] = i
		}
	}

	for i := headerIdx + 1; i < len(table); i++ {
		record := table[i]
		if isBlank(record) {
			continue
		}
		rows = append(rows, models.ImportedRow{
			Line:         i + 1,
			Name:         cellAt(record, columns, columnName),
			Email:        cellAt(record, columns, columnEmail),
			ProfilePhoto: cellAt(record, columns, columnPhoto),
		})
	}
	return rows
}

func cellAt(record []string, columns map[column]int, col column) *string {
	idx, ok := columns[col]
	if !ok {
		return nil
	}
	value := ""
	if idx < len(record) {
		value = record[idx]
	}
	return &value
}

// foldHeader lowercases a header label and drops spaces and punctuation so
// "Profile Photo URL", "profile_photo_url" and "profilePhotoUrl" compare equal
func foldHeader(label string) string {
	var b strings.Builder
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
