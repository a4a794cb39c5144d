// Package workbook maps one worksheet table of an Excel workbook on a
// OneDrive/SharePoint drive to rows of {header → cell} mappings.
package workbook

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
	"github.com/noah-isme/card-order-api/pkg/graph"
)

// Requester is the subset of the Graph client used by the store.
type Requester interface {
	DoJSON(ctx context.Context, op, method, path string, payload interface{}) (gjson.Result, error)
}

// Location identifies the backing table.
type Location struct {
	DriveID      string
	WorkbookPath string
	Worksheet    string
	Table        string
}

// Row is one data row keyed by header. Ordinal is the zero-based position
// among data rows and is what row addressing is computed from.
type Row struct {
	Ordinal int
	Cells   map[string]interface{}
}

// Value returns the cell under header or nil.
func (r Row) Value(header string) interface{} {
	return r.Cells[header]
}

// Table is a full read of the used range.
type Table struct {
	Headers []string
	Rows    []Row

	originColumn int
	originRow    int
}

// Column returns the absolute column index of header.
func (t *Table) Column(header string) (int, bool) {
	for i, h := range t.Headers {
		if h == header {
			return t.originColumn + i, true
		}
	}
	return 0, false
}

// SheetRow returns the 1-based sheet row holding the data row at ordinal.
func (t *Table) SheetRow(ordinal int) int {
	if t.originRow <= 1 {
		return SheetRow(ordinal)
	}
	return t.originRow + 1 + ordinal
}

// NewTable builds a table anchored at A1 from a header row and data rows.
func NewTable(headers []string, records ...[]interface{}) *Table {
	grid := make([][]interface{}, 0, len(records)+1)
	head := make([]interface{}, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	grid = append(grid, head)
	grid = append(grid, records...)

	t := &Table{originRow: 1}
	t.fill(grid)
	return t
}

// fill maps grid row 0 to headers and the rest to rows. Fully blank rows
// are skipped but keep their ordinal slot.
func (t *Table) fill(grid [][]interface{}) {
	if len(grid) == 0 {
		return
	}
	for _, cell := range grid[0] {
		t.Headers = append(t.Headers, strings.TrimSpace(cast.ToString(cell)))
	}
	for i, cells := range grid[1:] {
		row := Row{Ordinal: i, Cells: make(map[string]interface{}, len(t.Headers))}
		blank := true
		for j, header := range t.Headers {
			if header == "" {
				continue
			}
			var v interface{}
			if j < len(cells) {
				v = cells[j]
			}
			if v != nil && cast.ToString(v) != "" {
				blank = false
			}
			row.Cells[header] = v
		}
		if !blank {
			t.Rows = append(t.Rows, row)
		}
	}
}

// Store performs whole-table reads, appends and range patches. It holds no
// locks: concurrent writers race and the last write wins.
type Store struct {
	client Requester
	loc    Location
}

// NewStore validates the location and returns a Store.
func NewStore(client Requester, loc Location) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("graph client is required")
	}
	if loc.DriveID == "" || loc.WorkbookPath == "" || loc.Worksheet == "" {
		return nil, fmt.Errorf("drive id, workbook path and worksheet are required")
	}
	if loc.Table == "" {
		loc.Table = "Table1"
	}
	return &Store{client: client, loc: loc}, nil
}

// ReadAll fetches the used range; row 0 is the header row.
func (s *Store) ReadAll(ctx context.Context) (*Table, error) {
	res, err := s.client.DoJSON(ctx, "workbook.read", http.MethodGet, s.worksheetPath()+"/usedRange?$select=address,values", nil)
	if err != nil {
		if graph.IsNotFound(err) {
			err = fmt.Errorf("worksheet %q of %s not found: %w", s.loc.Worksheet, s.loc.WorkbookPath, err)
		}
		return nil, appErrors.Remote(fmt.Errorf("read used range: %w", err), "")
	}

	table := &Table{originRow: 1}
	if col, row, ok := parseOrigin(res.Get("address").String()); ok {
		table.originColumn, table.originRow = col, row
	}

	values := res.Get("values").Array()
	if len(values) == 0 {
		return table, nil
	}

	grid := make([][]interface{}, 0, len(values))
	for _, line := range values {
		cells := line.Array()
		out := make([]interface{}, len(cells))
		for j, cell := range cells {
			out[j] = cell.Value()
		}
		grid = append(grid, out)
	}
	table.fill(grid)
	return table, nil
}

// AppendRow adds one row at the end of the table in the given column order.
// The write is not read back.
func (s *Store) AppendRow(ctx context.Context, values []interface{}) error {
	payload := map[string]interface{}{"values": [][]interface{}{values}}
	path := s.worksheetPath() + "/tables/" + url.PathEscape(s.loc.Table) + "/rows/add"
	if _, err := s.client.DoJSON(ctx, "workbook.append", http.MethodPost, path, payload); err != nil {
		if graph.IsNotFound(err) {
			err = fmt.Errorf("table %q not found: %w", s.loc.Table, err)
		}
		return appErrors.Remote(fmt.Errorf("append row: %w", err), "")
	}
	return nil
}

// PatchRange overwrites the rectangular range at address with values.
func (s *Store) PatchRange(ctx context.Context, address string, values [][]interface{}) error {
	payload := map[string]interface{}{"values": values}
	path := s.worksheetPath() + "/range(address='" + url.PathEscape(address) + "')"
	if _, err := s.client.DoJSON(ctx, "workbook.patch", http.MethodPatch, path, payload); err != nil {
		return appErrors.Remote(fmt.Errorf("patch range %s: %w", address, err), "")
	}
	return nil
}

func (s *Store) worksheetPath() string {
	return "/drives/" + url.PathEscape(s.loc.DriveID) +
		"/items/root:" + graph.EscapePath(s.loc.WorkbookPath) + ":" +
		"/workbook/worksheets/" + url.PathEscape(s.loc.Worksheet)
}

