package repository

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/card-order-api/internal/models"
	"github.com/noah-isme/card-order-api/pkg/drive"
	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
	"github.com/noah-isme/card-order-api/pkg/workbook"
)

const defaultIDAttempts = 50

type tableStore interface {
	ReadAll(ctx context.Context) (*workbook.Table, error)
	AppendRow(ctx context.Context, values []interface{}) error
	PatchRange(ctx context.Context, address string, values [][]interface{}) error
}

type fileStore interface {
	Upload(ctx context.Context, destination string, content []byte, contentType string) (*drive.Item, error)
	CreateShareLink(ctx context.Context, itemID string, visibility drive.Visibility) (string, error)
}

// ApplicationRepositoryConfig tunes id generation and draft storage.
type ApplicationRepositoryConfig struct {
	DraftFolder string
	// MaxIDAttempts bounds how many random ids are drawn before giving up.
	MaxIDAttempts int
}

// ApplicationRepository exposes the application table as domain records.
// Every lookup re-reads the whole table; there is no index or cache.
type ApplicationRepository struct {
	store       tableStore
	files       fileStore
	draftFolder string
	maxAttempts int

	now    func() time.Time
	suffix func() int
}

// NewApplicationRepository creates a repository over the table store and
// drive relay.
func NewApplicationRepository(store tableStore, files fileStore, cfg ApplicationRepositoryConfig) *ApplicationRepository {
	if cfg.DraftFolder == "" {
		cfg.DraftFolder = "/명함초안"
	}
	if cfg.MaxIDAttempts <= 0 {
		cfg.MaxIDAttempts = defaultIDAttempts
	}
	return &ApplicationRepository{
		store:       store,
		files:       files,
		draftFolder: cfg.DraftFolder,
		maxAttempts: cfg.MaxIDAttempts,
		now:         time.Now,
		suffix:      func() int { return 1000 + rand.Intn(9000) },
	}
}

// Create appends a new Requested application and returns it.
func (r *ApplicationRepository) Create(ctx context.Context, input models.NewApplication) (*models.Application, error) {
	table, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	id, err := r.nextID(now.Year(), table)
	if err != nil {
		return nil, err
	}

	app := &models.Application{
		ID:             id,
		Status:         models.StatusRequested,
		StatusLabel:    models.StatusRequested.Label(),
		ApplicantEmail: input.ApplicantEmail,
		ApplicantName:  input.ApplicantName,
		Quantity:       input.Quantity,
		SameAsExisting: input.SameAsExisting,
		IsLawyer:       input.IsLawyer,
		LawyerName:     input.LawyerName,
		Remarks:        input.Remarks,
		CreatedAt:      now.UTC().Truncate(time.Second),
	}
	if err := r.store.AppendRow(ctx, encodeApplication(app)); err != nil {
		return nil, err
	}
	return app, nil
}

// nextID draws LN-<year>-<1000..9999> until one is not already taken.
func (r *ApplicationRepository) nextID(year int, table *workbook.Table) (string, error) {
	taken := make(map[string]struct{}, len(table.Rows))
	for _, row := range table.Rows {
		taken[cellString(row.Value(models.HeaderID))] = struct{}{}
	}
	for i := 0; i < r.maxAttempts; i++ {
		id := fmt.Sprintf("LN-%d-%04d", year, r.suffix())
		if _, exists := taken[id]; !exists {
			return id, nil
		}
	}
	return "", appErrors.Wrap(fmt.Errorf("no free application id for %d after %d draws", year, r.maxAttempts),
		appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, appErrors.ErrConflict.Message)
}

// FindByID returns the first row whose id matches.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	_, row, err := r.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	app := decodeApplication(row)
	return &app, nil
}

// FindByIDAndEmail matches both fields exactly; a mismatch on either is
// reported as not found.
func (r *ApplicationRepository) FindByIDAndEmail(ctx context.Context, id, email string) (*models.Application, error) {
	app, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.ApplicantEmail != email {
		return nil, appErrors.ErrNotFound
	}
	return app, nil
}

// List returns every application in sheet order, optionally filtered by an
// exact status.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	table, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	apps := make([]models.Application, 0, len(table.Rows))
	for _, row := range table.Rows {
		app := decodeApplication(row)
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// UpdateStatus writes the status cell, then processedBy and processedAt in a
// second write. Concurrent updates of the same row race; last write wins.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, actor string) error {
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "유효하지 않은 상태값입니다.")
	}
	table, row, err := r.locate(ctx, id)
	if err != nil {
		return err
	}
	sheetRow := table.SheetRow(row.Ordinal)

	if err := r.patchCells(ctx, table, sheetRow, []cellWrite{
		{models.HeaderStatus, status.Label()},
	}); err != nil {
		return err
	}
	return r.patchCells(ctx, table, sheetRow, []cellWrite{
		{models.HeaderProcessedBy, actor},
		{models.HeaderProcessedAt, formatTime(r.now())},
	})
}

// UpdateAttachment writes the attachment link with processedBy and
// processedAt in one patch.
func (r *ApplicationRepository) UpdateAttachment(ctx context.Context, id, url, actor string) error {
	table, row, err := r.locate(ctx, id)
	if err != nil {
		return err
	}
	return r.patchCells(ctx, table, table.SheetRow(row.Ordinal), []cellWrite{
		{models.HeaderAttachmentURL, url},
		{models.HeaderProcessedBy, actor},
		{models.HeaderProcessedAt, formatTime(r.now())},
	})
}

// UploadDraftFile stores content as <folder>/<id>_<unixMillis>_<name> and
// returns an organization-scoped share link.
func (r *ApplicationRepository) UploadDraftFile(ctx context.Context, content []byte, originalName, contentType, id string) (string, error) {
	name := fmt.Sprintf("%s_%d_%s", id, r.now().UnixMilli(), sanitizeFileName(originalName))
	item, err := r.files.Upload(ctx, path.Join(r.draftFolder, name), content, contentType)
	if err != nil {
		return "", err
	}
	return r.files.CreateShareLink(ctx, item.ID, drive.VisibilityOrganization)
}

func (r *ApplicationRepository) locate(ctx context.Context, id string) (*workbook.Table, workbook.Row, error) {
	table, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, workbook.Row{}, err
	}
	for _, row := range table.Rows {
		if cellString(row.Value(models.HeaderID)) == id {
			return table, row, nil
		}
	}
	return nil, workbook.Row{}, appErrors.ErrNotFound
}

type cellWrite struct {
	header string
	value  interface{}
}

// patchCells resolves each header to its column in the table just read and
// patches contiguous columns as one range.
func (r *ApplicationRepository) patchCells(ctx context.Context, table *workbook.Table, sheetRow int, writes []cellWrite) error {
	type located struct {
		column int
		value  interface{}
	}
	cells := make([]located, 0, len(writes))
	for _, w := range writes {
		col, ok := table.Column(w.header)
		if !ok {
			return appErrors.Wrap(fmt.Errorf("worksheet has no %q column", w.header),
				appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
		}
		value := w.value
		if text, ok := value.(string); ok {
			value = textCell(text)
		}
		cells = append(cells, located{column: col, value: value})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].column < cells[j].column })

	for start := 0; start < len(cells); {
		end := start
		for end+1 < len(cells) && cells[end+1].column == cells[end].column+1 {
			end++
		}
		values := make([]interface{}, 0, end-start+1)
		for _, c := range cells[start : end+1] {
			values = append(values, c.value)
		}
		address := workbook.RangeAddress(cells[start].column, cells[end].column, sheetRow)
		if err := r.store.PatchRange(ctx, address, [][]interface{}{values}); err != nil {
			return err
		}
		start = end + 1
	}
	return nil
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "draft"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '*', ':', '<', '>', '?', '|', '#', '%':
			return '_'
		}
		return r
	}, name)
}
