package models

// Worksheet headers of the application table.
const (
	HeaderID             = "신청ID"
	HeaderStatus         = "Status"
	HeaderApplicantEmail = "신청자계정"
	HeaderApplicantName  = "등록자"
	HeaderQuantity       = "통"
	HeaderSameAsExisting = "기존동일여부"
	HeaderIsLawyer       = "변호사여부"
	HeaderLawyerName     = "담당변호사"
	HeaderRemarks        = "비고"
	HeaderCreatedAt      = "등록일"
	HeaderAttachmentURL  = "첨부파일"
	HeaderProcessedBy    = "처리자"
	HeaderProcessedAt    = "처리일자"
)

// ApplicationHeaders is the fixed column order (A through M) used for
// appends. Reads and patches locate columns by header instead.
var ApplicationHeaders = []string{
	HeaderID,
	HeaderStatus,
	HeaderApplicantEmail,
	HeaderApplicantName,
	HeaderQuantity,
	HeaderSameAsExisting,
	HeaderIsLawyer,
	HeaderLawyerName,
	HeaderRemarks,
	HeaderCreatedAt,
	HeaderAttachmentURL,
	HeaderProcessedBy,
	HeaderProcessedAt,
}
