package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Quantity accepts a JSON number or a numeric string ("2").
type Quantity int

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*q = 0
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok && s == "" {
		*q = 0
		return nil
	}
	if f, ok := raw.(float64); ok && f != float64(int(f)) {
		return fmt.Errorf("quantity must be a whole number")
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return fmt.Errorf("quantity must be a number: %w", err)
	}
	*q = Quantity(n)
	return nil
}

// SubmitApplicationRequest is the applicant order form.
type SubmitApplicationRequest struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Email          string   `json:"email" validate:"required,email,max=254"`
	Quantity       Quantity `json:"quantity" validate:"required,min=1,max=10000"`
	SameAsExisting string   `json:"sameAsExisting" validate:"required"`
	IsLawyer       string   `json:"isLawyer" validate:"required"`
	LawyerName     string   `json:"lawyerName" validate:"max=100"`
	Remarks        string   `json:"remarks" validate:"max=2000"`
}

// UpdateStatusRequest is the admin status change payload.
type UpdateStatusRequest struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	Status        string `json:"status" validate:"required"`
}

// ApplicantRequest identifies an application on behalf of its applicant.
type ApplicantRequest struct {
	ApplicationID string `json:"applicationId" form:"applicationId" validate:"required"`
	Email         string `json:"email" form:"email" validate:"required"`
}

// ModificationRequest asks the admin to revise a draft.
type ModificationRequest struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	Email         string `json:"email" validate:"required"`
	Reason        string `json:"reason" validate:"required,max=2000"`
}

// DraftUpload carries an uploaded draft file.
type DraftUpload struct {
	ApplicationID string
	FileName      string
	ContentType   string
	Content       []byte
}

// ConfirmDraftResponse is what the applicant sees on the confirmation page.
type ConfirmDraftResponse struct {
	ApplicationID string `json:"applicationId"`
	Name          string `json:"name"`
	AttachmentURL string `json:"attachmentUrl"`
}

// StatusQueryResponse answers the applicant status lookup.
type StatusQueryResponse struct {
	ApplicationID  string `json:"applicationId"`
	Status         string `json:"status"`
	StatusLabel    string `json:"statusLabel"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	RegisteredDate string `json:"registeredDate"`
	ProcessedDate  string `json:"processedDate,omitempty"`
}
