package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/card-order-api/internal/dto"
	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
	"github.com/noah-isme/card-order-api/pkg/response"
)

type applicantService interface {
	Submit(ctx context.Context, req dto.SubmitApplicationRequest) (string, error)
	ConfirmDraft(ctx context.Context, id, email string) (*dto.ConfirmDraftResponse, error)
	Approve(ctx context.Context, req dto.ApplicantRequest) error
	RequestModification(ctx context.Context, req dto.ModificationRequest) error
	QueryStatus(ctx context.Context, id, email string) (*dto.StatusQueryResponse, error)
}

// ApplicationHandler serves the applicant-facing endpoints.
type ApplicationHandler struct {
	service applicantService
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(svc applicantService) *ApplicationHandler {
	return &ApplicationHandler{service: svc}
}

// Submit godoc
// @Summary Submit a business-card order
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.SubmitApplicationRequest true "Order form"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /api/application-submit [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}

	id, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "신청 처리 중 오류가 발생했습니다.")
		return
	}
	response.Submitted(c, id, "신청이 완료되었습니다.")
}

// Confirm godoc
// @Summary Fetch the draft awaiting the applicant's decision
// @Tags Applications
// @Produce json
// @Param applicationId query string true "Application ID"
// @Param email query string true "Applicant email"
// @Success 200 {object} response.Envelope{data=dto.ConfirmDraftResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/application-confirm [get]
func (h *ApplicationHandler) Confirm(c *gin.Context) {
	res, err := h.service.ConfirmDraft(c.Request.Context(), c.Query("applicationId"), c.Query("email"))
	if err != nil {
		fail(c, err, "데이터 조회 중 오류가 발생했습니다.")
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Approve godoc
// @Summary Approve the draft for production
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.ApplicantRequest true "Applicant identity"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/application-approve [post]
func (h *ApplicationHandler) Approve(c *gin.Context) {
	var req dto.ApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "잘못된 접근입니다."))
		return
	}

	if err := h.service.Approve(c.Request.Context(), req); err != nil {
		fail(c, err, "처리 중 오류가 발생했습니다.")
		return
	}
	response.OK(c, "제작이 승인되었습니다.")
}

// Modify godoc
// @Summary Request changes to the draft
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.ModificationRequest true "Modification request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/application-modify [post]
func (h *ApplicationHandler) Modify(c *gin.Context) {
	var req dto.ModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "수정 요청 사유를 입력해주세요."))
		return
	}

	if err := h.service.RequestModification(c.Request.Context(), req); err != nil {
		fail(c, err, "처리 중 오류가 발생했습니다.")
		return
	}
	response.OK(c, "수정 요청이 전달되었습니다.")
}

// Status godoc
// @Summary Look up an order's status
// @Tags Applications
// @Produce json
// @Param applicationId query string true "Application ID"
// @Param email query string true "Applicant email"
// @Success 200 {object} response.Envelope{data=dto.StatusQueryResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/application-status [get]
func (h *ApplicationHandler) Status(c *gin.Context) {
	res, err := h.service.QueryStatus(c.Request.Context(), c.Query("applicationId"), c.Query("email"))
	if err != nil {
		fail(c, err, "상태 조회 중 오류가 발생했습니다.")
		return
	}
	response.JSON(c, http.StatusOK, res)
}
