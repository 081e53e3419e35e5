// Package csvtab parses delimiter-separated feedback exports into
// header-keyed rows. It is deliberately permissive: the delimiter is
// auto-detected from the header line, short rows leave trailing columns
// absent, and excess fields are dropped.
package csvtab

import "strings"

// Row maps a header cell to the field parsed for it. Columns the source
// row did not reach are absent from the map.
type Row map[string]string

// Table is the parsed form of one CSV document.
type Table struct {
	// Header holds the trimmed header cells in file order.
	Header []string

	// Rows holds the data rows, keyed by header cell.
	Rows []Row
}

// Parse parses CSV text into a Table. The delimiter is detected from the
// first line among comma, semicolon and tab; fields may be double-quoted
// with embedded quotes doubled. A leading byte-order mark is stripped.
// Rows whose every field is blank after trimming are dropped, so a
// trailing newline never produces a phantom row. Parse never fails:
// malformed input degrades to whatever rows the grammar yields.
func Parse(text string) Table {
	text = strings.TrimPrefix(text, "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return Table{}
	}

	delim := detectDelimiter(firstLine(text))
	records := splitRecords(text, delim)
	if len(records) == 0 {
		return Table{}
	}

	header := records[0]
	for i, cell := range header {
		header[i] = strings.TrimSpace(cell)
	}
	if !anyNonEmpty(header) {
		return Table{}
	}

	t := Table{Header: header}
	for _, fields := range records[1:] {
		row := make(Row, len(header))
		blank := true
		// Positional mapping only assigns as many fields as there are
		// headers; extra fields fall off the end.
		for i, name := range header {
			if i >= len(fields) {
				break
			}
			row[name] = fields[i]
			if strings.TrimSpace(fields[i]) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// detectDelimiter inspects a single header line. Semicolon wins when it
// outnumbers commas and is at least as frequent as tabs; tab wins when it
// strictly outnumbers both; comma is the default. The choice is made once
// and never re-evaluated per row.
func detectDelimiter(line string) rune {
	commas := strings.Count(line, ",")
	semis := strings.Count(line, ";")
	tabs := strings.Count(line, "\t")

	switch {
	case semis > commas && semis >= tabs:
		return ';'
	case tabs > commas && tabs > semis:
		return '\t'
	default:
		return ','
	}
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

// splitRecords runs the quoted-field grammar over the whole input.
// Inside quotes a delimiter or line break is literal content and a
// doubled quote is a literal quote. Both \r\n and \n terminate records;
// a bare \r outside quotes is ignored.
func splitRecords(text string, delim rune) [][]string {
	var (
		records  [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
	)

	runes := []rune(text)
	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		records = append(records, fields)
		fields = nil
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if inQuotes {
			if r == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteRune(r)
			continue
		}

		switch r {
		case '"':
			inQuotes = true
		case delim:
			endField()
		case '\n':
			endRecord()
		case '\r':
			// swallowed; the \n of a \r\n pair ends the record
		default:
			field.WriteRune(r)
		}
	}

	// Flush a final record only if the input did not end on a newline.
	if field.Len() > 0 || len(fields) > 0 {
		endRecord()
	}
	return records
}

func anyNonEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}
