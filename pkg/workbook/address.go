package workbook

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnLetter converts a zero-based column index to its spreadsheet letters
// (0 → A, 25 → Z, 26 → AA).
func ColumnLetter(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

// ColumnIndex is the inverse of ColumnLetter.
func ColumnIndex(letters string) (int, error) {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	if letters == "" {
		return 0, fmt.Errorf("empty column reference")
	}
	n := 0
	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column reference %q", letters)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, nil
}

// CellAddress renders a single cell address, e.g. CellAddress(1, 5) == "B5".
func CellAddress(column, row int) string {
	return ColumnLetter(column) + strconv.Itoa(row)
}

// RangeAddress renders a one-row range spanning [first, last] columns.
func RangeAddress(first, last, row int) string {
	if first == last {
		return CellAddress(first, row)
	}
	return CellAddress(first, row) + ":" + CellAddress(last, row)
}

// SheetRow maps a data-row ordinal to its 1-based sheet row when the header
// occupies row 1.
func SheetRow(ordinal int) int {
	return ordinal + 2
}

// parseOrigin extracts the top-left cell of an address such as
// "Sheet1!B3:N20" or "'신청 목록'!A1:M5".
func parseOrigin(address string) (column, row int, ok bool) {
	if i := strings.LastIndex(address, "!"); i >= 0 {
		address = address[i+1:]
	}
	if i := strings.Index(address, ":"); i >= 0 {
		address = address[:i]
	}
	address = strings.ReplaceAll(address, "$", "")

	split := strings.IndexFunc(address, func(r rune) bool { return r >= '0' && r <= '9' })
	if split <= 0 {
		return 0, 0, false
	}
	column, err := ColumnIndex(address[:split])
	if err != nil {
		return 0, 0, false
	}
	row, err = strconv.Atoi(address[split:])
	if err != nil || row < 1 {
		return 0, 0, false
	}
	return column, row, true
}
