package triasync

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Pharmacy POS exports come in two xlsx flavors: the strict OOXML variant
// and the common transitional one. Both are accepted, plus namespace-free
// markup some generators emit.
const (
	nsSpreadsheetStrict   = "http://purl.oclc.org/ooxml/spreadsheetml/main"
	nsSpreadsheetStandard = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
)

var ErrWorksheetMissing = errors.New("workbook has no worksheet")

type Cell struct {
	// Column is the letter part of the cell reference, e.g. "AG".
	Column string
	Value  string
}

type Row struct {
	Cells []Cell
}

// Cell returns the value at the given column letter, or "" when the row has
// no cell there.
func (r *Row) Cell(column string) string {
	for _, c := range r.Cells {
		if c.Column == column {
			return c.Value
		}
	}
	return ""
}

// Values returns the cell values in document order.
func (r *Row) Values() []string {
	values := make([]string, 0, len(r.Cells))
	for _, c := range r.Cells {
		values = append(values, c.Value)
	}
	return values
}

type Workbook struct {
	Rows []Row
}

// ColumnIndex converts a column letter to a zero-based index (A=0, AA=26).
func ColumnIndex(column string) int {
	index := 0
	for _, ch := range column {
		if ch < 'A' || ch > 'Z' {
			continue
		}
		index = index*26 + int(ch-'A') + 1
	}
	return index - 1
}

func matchesSpreadsheetName(name xml.Name, local string) bool {
	if name.Local != local {
		return false
	}
	switch name.Space {
	case "", nsSpreadsheetStrict, nsSpreadsheetStandard:
		return true
	}
	return false
}

// OpenWorkbook decodes the first worksheet of an xlsx archive. Shared
// strings are resolved when xl/sharedStrings.xml is present; an index out of
// range yields an empty value rather than an error.
func OpenWorkbook(data []byte) (*Workbook, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var sharedStrings []string
	if raw, err := readZipFile(reader, "xl/sharedStrings.xml"); err == nil {
		sharedStrings, err = parseSharedStrings(raw)
		if err != nil {
			return nil, err
		}
	}

	raw, err := readZipFile(reader, "xl/worksheets/sheet1.xml")
	if err != nil {
		return nil, ErrWorksheetMissing
	}
	return parseWorksheet(raw, sharedStrings)
}

func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errors.New("file not found in archive: " + name)
}

func parseSharedStrings(raw []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))

	var strs []string
	var current strings.Builder
	inEntry := false
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if matchesSpreadsheetName(t.Name, "si") {
				inEntry = true
				current.Reset()
			} else if inEntry && matchesSpreadsheetName(t.Name, "t") {
				inText = true
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			if matchesSpreadsheetName(t.Name, "t") {
				inText = false
			} else if matchesSpreadsheetName(t.Name, "si") {
				inEntry = false
				strs = append(strs, current.String())
			}
		}
	}
	return strs, nil
}

func parseWorksheet(raw []byte, sharedStrings []string) (*Workbook, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))

	workbook := &Workbook{}
	var row *Row
	var cellColumn string
	var cellType string
	var value strings.Builder
	inValue := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch {
			case matchesSpreadsheetName(t.Name, "row"):
				row = &Row{}
			case matchesSpreadsheetName(t.Name, "c"):
				cellColumn = ""
				cellType = ""
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "r":
						cellColumn = columnLetters(attr.Value)
					case "t":
						cellType = attr.Value
					}
				}
			case matchesSpreadsheetName(t.Name, "v"):
				inValue = true
				value.Reset()
			}
		case xml.CharData:
			if inValue {
				value.Write(t)
			}
		case xml.EndElement:
			switch {
			case matchesSpreadsheetName(t.Name, "v"):
				inValue = false
			case matchesSpreadsheetName(t.Name, "c"):
				if row != nil {
					row.Cells = append(row.Cells, Cell{
						Column: cellColumn,
						Value:  resolveCellValue(cellType, value.String(), sharedStrings),
					})
				}
				value.Reset()
			case matchesSpreadsheetName(t.Name, "row"):
				if row != nil {
					workbook.Rows = append(workbook.Rows, *row)
					row = nil
				}
			}
		}
	}
	return workbook, nil
}

func resolveCellValue(cellType string, raw string, sharedStrings []string) string {
	if cellType != "s" {
		return raw
	}
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || index < 0 || index >= len(sharedStrings) {
		return ""
	}
	return sharedStrings[index]
}

func columnLetters(ref string) string {
	var b strings.Builder
	for _, ch := range ref {
		if ch >= 'A' && ch <= 'Z' {
			b.WriteRune(ch)
		} else {
			break
		}
	}
	return b.String()
}
