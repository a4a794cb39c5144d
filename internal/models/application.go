package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ApplicationStatus is the lifecycle state of a business-card order.
type ApplicationStatus string

const (
	StatusRequested             ApplicationStatus = "Requested"
	StatusDraftDelivered        ApplicationStatus = "DraftDelivered"
	StatusModificationRequested ApplicationStatus = "ModificationRequested"
	StatusInProduction          ApplicationStatus = "InProduction"
	StatusCompleted             ApplicationStatus = "Completed"
	StatusDeleted               ApplicationStatus = "Deleted"
)

// ErrUnknownStatus is returned by ParseStatus for values outside the enum.
var ErrUnknownStatus = errors.New("unknown application status")

var statusOrder = []ApplicationStatus{
	StatusRequested,
	StatusDraftDelivered,
	StatusModificationRequested,
	StatusInProduction,
	StatusCompleted,
	StatusDeleted,
}

// Labels as stored in the worksheet Status column.
var statusLabels = map[ApplicationStatus]string{
	StatusRequested:             "신청",
	StatusDraftDelivered:        "초안전달",
	StatusModificationRequested: "수정요청",
	StatusInProduction:          "제작",
	StatusCompleted:             "지급완료",
	StatusDeleted:               "삭제",
}

// Intended lifecycle graph. Deleted is reachable from every state and a
// status may always be rewritten onto itself.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusRequested:             {StatusDraftDelivered},
	StatusDraftDelivered:        {StatusInProduction, StatusModificationRequested},
	StatusModificationRequested: {StatusDraftDelivered},
	StatusInProduction:          {StatusCompleted},
}

// Label returns the worksheet label for s.
func (s ApplicationStatus) Label() string {
	return statusLabels[s]
}

// Valid reports whether s is one of the six statuses.
func (s ApplicationStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Terminal reports whether s ends the lifecycle by convention.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusDeleted
}

// ParseStatus accepts either the enum name or the worksheet label.
func ParseStatus(raw string) (ApplicationStatus, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range statusOrder {
		if raw == string(s) || raw == statusLabels[s] {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// CanTransition reports whether moving from → to follows the lifecycle graph.
func CanTransition(from, to ApplicationStatus) bool {
	if !to.Valid() {
		return false
	}
	if from == to || to == StatusDeleted {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// YesNo answers whether the card layout matches an existing one.
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// LawyerKind distinguishes lawyers from staff; staff name their lawyer.
type LawyerKind string

const (
	KindLawyer LawyerKind = "Lawyer"
	KindStaff  LawyerKind = "Staff"
)

var yesNoLabels = map[YesNo]string{Yes: "예", No: "아니오"}

var lawyerKindLabels = map[LawyerKind]string{KindLawyer: "변호사", KindStaff: "직원"}

// Label returns the worksheet label.
func (v YesNo) Label() string { return yesNoLabels[v] }

// Label returns the worksheet label.
func (k LawyerKind) Label() string { return lawyerKindLabels[k] }

// ParseYesNo accepts the enum name (any case) or the worksheet label.
func ParseYesNo(raw string) (YesNo, bool) {
	raw = strings.TrimSpace(raw)
	for v, label := range yesNoLabels {
		if strings.EqualFold(raw, string(v)) || raw == label {
			return v, true
		}
	}
	return "", false
}

// ParseLawyerKind accepts the enum name (any case) or the worksheet label.
func ParseLawyerKind(raw string) (LawyerKind, bool) {
	raw = strings.TrimSpace(raw)
	for k, label := range lawyerKindLabels {
		if strings.EqualFold(raw, string(k)) || raw == label {
			return k, true
		}
	}
	return "", false
}

// ApplicationIDPattern matches LN-<year>-<4 digits>.
var ApplicationIDPattern = regexp.MustCompile(`^LN-\d{4}-\d{4}$`)

// Application is one business-card order, one worksheet row.
type Application struct {
	ID             string            `json:"applicationId"`
	Status         ApplicationStatus `json:"status"`
	StatusLabel    string            `json:"statusLabel"`
	ApplicantEmail string            `json:"email"`
	ApplicantName  string            `json:"name"`
	Quantity       int               `json:"quantity"`
	SameAsExisting YesNo             `json:"sameAsExisting"`
	IsLawyer       LawyerKind        `json:"isLawyer"`
	LawyerName     string            `json:"lawyerName,omitempty"`
	Remarks        string            `json:"remarks,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	AttachmentURL  string            `json:"attachmentUrl,omitempty"`
	ProcessedBy    string            `json:"processedBy,omitempty"`
	ProcessedAt    *time.Time        `json:"processedAt,omitempty"`
}

// NewApplication captures applicant input for creation.
type NewApplication struct {
	ApplicantEmail string
	ApplicantName  string
	Quantity       int
	SameAsExisting YesNo
	IsLawyer       LawyerKind
	LawyerName     string
	Remarks        string
}

// ApplicationFilter narrows List results.
type ApplicationFilter struct {
	Status *ApplicationStatus
}
