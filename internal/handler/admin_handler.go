package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/card-order-api/internal/dto"
	"github.com/noah-isme/card-order-api/internal/middleware"
	"github.com/noah-isme/card-order-api/internal/models"
	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
	"github.com/noah-isme/card-order-api/pkg/response"
)

// multipartOverhead is allowed on top of the draft size for form fields and
// part headers.
const multipartOverhead = 1 << 20

type adminService interface {
	List(ctx context.Context, statusFilter string) ([]models.Application, error)
	Get(ctx context.Context, id string) (*models.Application, error)
	UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, actor string) error
	UploadDraft(ctx context.Context, upload dto.DraftUpload, actor string) error
}

// AdminHandler serves the administrator endpoints.
type AdminHandler struct {
	service      adminService
	maxDraftSize int64
}

// NewAdminHandler constructs the handler. maxDraftSize bounds the upload
// request body; zero leaves it unbounded.
func NewAdminHandler(svc adminService, maxDraftSize int64) *AdminHandler {
	return &AdminHandler{service: svc, maxDraftSize: maxDraftSize}
}

// List godoc
// @Summary List applications
// @Tags Admin
// @Produce json
// @Param status query string false "Status name or label; empty or all for every row"
// @Success 200 {object} response.Envelope{data=[]models.Application}
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Security BearerAuth
// @Router /api/admin-applications [get]
func (h *AdminHandler) List(c *gin.Context) {
	apps, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, err, "목록 조회 중 오류가 발생했습니다.")
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	response.JSON(c, http.StatusOK, apps)
}

// Detail godoc
// @Summary Get one application
// @Tags Admin
// @Produce json
// @Param applicationId query string true "Application ID"
// @Success 200 {object} response.Envelope{data=models.Application}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /api/admin-detail [get]
func (h *AdminHandler) Detail(c *gin.Context) {
	app, err := h.service.Get(c.Request.Context(), c.Query("applicationId"))
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "해당 신청을 찾을 수 없습니다."))
			return
		}
		fail(c, err, "조회 중 오류가 발생했습니다.")
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// UpdateStatus godoc
// @Summary Change an application's status
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /api/admin-status [post]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "올바르지 않은 상태입니다."))
		return
	}
	c.Set(middleware.AuditApplicationKey, req.ApplicationID)

	if err := h.service.UpdateStatus(c.Request.Context(), req, adminActor(c)); err != nil {
		fail(c, err, "상태 변경 중 오류가 발생했습니다.")
		return
	}
	response.OK(c, "상태가 변경되었습니다.")
}

// Upload godoc
// @Summary Upload a draft and send it to the applicant
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param applicationId formData string true "Application ID"
// @Param file formData file true "Draft file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Security BearerAuth
// @Router /api/admin-upload [post]
func (h *AdminHandler) Upload(c *gin.Context) {
	if h.maxDraftSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxDraftSize+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "파일을 업로드해주세요."))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "파일 업로드 오류"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "파일 업로드 오류"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "파일 업로드 오류"))
		return
	}

	upload := dto.DraftUpload{
		ApplicationID: strings.TrimSpace(c.PostForm("applicationId")),
		FileName:      fileHeader.Filename,
		ContentType:   fileHeader.Header.Get("Content-Type"),
		Content:       content,
	}
	c.Set(middleware.AuditApplicationKey, upload.ApplicationID)

	if err := h.service.UploadDraft(c.Request.Context(), upload, adminActor(c)); err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "해당 신청을 찾을 수 없습니다."))
			return
		}
		fail(c, err, "업로드 중 오류가 발생했습니다.")
		return
	}
	response.OK(c, "초안이 업로드되고 신청자에게 전달되었습니다.")
}
