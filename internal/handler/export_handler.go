package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/card-order-api/internal/service"
)

type exportService interface {
	ApplicationsCSV(ctx context.Context, statusFilter string) (*service.ExportFile, error)
}

// ExportHandler serves spreadsheet downloads for administrators.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Applications godoc
// @Summary Download applications as CSV
// @Tags Admin
// @Produce text/csv
// @Param status query string false "Status name or label; empty or all for every row"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /api/admin-export [get]
func (h *ExportHandler) Applications(c *gin.Context) {
	file, err := h.service.ApplicationsCSV(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, err, "목록 조회 중 오류가 발생했습니다.")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
