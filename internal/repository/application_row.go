package repository

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/noah-isme/card-order-api/internal/models"
	"github.com/noah-isme/card-order-api/pkg/workbook"
)

// Excel serial day zero.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// encodeApplication renders app in the fixed column order.
func encodeApplication(app *models.Application) []interface{} {
	processedAt := ""
	if app.ProcessedAt != nil {
		processedAt = formatTime(*app.ProcessedAt)
	}
	return []interface{}{
		app.ID,
		app.Status.Label(),
		textCell(app.ApplicantEmail),
		textCell(app.ApplicantName),
		app.Quantity,
		app.SameAsExisting.Label(),
		app.IsLawyer.Label(),
		textCell(app.LawyerName),
		textCell(app.Remarks),
		formatTime(app.CreatedAt),
		textCell(app.AttachmentURL),
		textCell(app.ProcessedBy),
		processedAt,
	}
}

// textCell keeps s literal when written through range values, where a
// leading = + - or @ starts a formula. Excel consumes the apostrophe and
// reads the cell back as s.
func textCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\'':
		return "'" + s
	}
	return s
}

// decodeApplication maps a row by header. Unknown enum values are kept
// verbatim rather than rejected so a hand-edited sheet still lists.
func decodeApplication(row workbook.Row) models.Application {
	app := models.Application{
		ID:             cellString(row.Value(models.HeaderID)),
		ApplicantEmail: cellString(row.Value(models.HeaderApplicantEmail)),
		ApplicantName:  cellString(row.Value(models.HeaderApplicantName)),
		Quantity:       cellInt(row.Value(models.HeaderQuantity)),
		LawyerName:     cellString(row.Value(models.HeaderLawyerName)),
		Remarks:        cellString(row.Value(models.HeaderRemarks)),
		AttachmentURL:  cellString(row.Value(models.HeaderAttachmentURL)),
		ProcessedBy:    cellString(row.Value(models.HeaderProcessedBy)),
	}

	rawStatus := cellString(row.Value(models.HeaderStatus))
	if status, err := models.ParseStatus(rawStatus); err == nil {
		app.Status = status
		app.StatusLabel = status.Label()
	} else {
		app.Status = models.ApplicationStatus(rawStatus)
		app.StatusLabel = rawStatus
	}

	rawSame := cellString(row.Value(models.HeaderSameAsExisting))
	if v, ok := models.ParseYesNo(rawSame); ok {
		app.SameAsExisting = v
	} else {
		app.SameAsExisting = models.YesNo(rawSame)
	}

	rawKind := cellString(row.Value(models.HeaderIsLawyer))
	if k, ok := models.ParseLawyerKind(rawKind); ok {
		app.IsLawyer = k
	} else {
		app.IsLawyer = models.LawyerKind(rawKind)
	}

	if ts, ok := cellTime(row.Value(models.HeaderCreatedAt)); ok {
		app.CreatedAt = ts
	}
	if ts, ok := cellTime(row.Value(models.HeaderProcessedAt)); ok {
		app.ProcessedAt = &ts
	}
	return app
}

// formatTime writes timestamps as RFC3339 UTC with second precision.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return cast.ToString(int64(f))
	}
	return strings.TrimSpace(cast.ToString(v))
}

func cellInt(v interface{}) int {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		if f, ferr := cast.ToFloat64E(v); ferr == nil {
			return int(math.Round(f))
		}
		return 0
	}
	return n
}

// cellTime reads RFC3339 strings (with or without fractional seconds) and
// Excel serial day numbers.
func cellTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		return fromExcelSerial(val), val > 0
	case int:
		return fromExcelSerial(float64(val)), val > 0
	case int64:
		return fromExcelSerial(float64(val)), val > 0
	case time.Time:
		return val.UTC(), !val.IsZero()
	}

	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), true
	}
	if f, err := cast.ToFloat64E(s); err == nil && f > 0 {
		return fromExcelSerial(f), true
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func fromExcelSerial(days float64) time.Time {
	whole := math.Floor(days)
	frac := days - whole
	seconds := math.Round(frac * 86400)
	return excelEpoch.AddDate(0, 0, int(whole)).Add(time.Duration(seconds) * time.Second)
}
