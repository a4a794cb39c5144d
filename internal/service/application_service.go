package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/card-order-api/internal/dto"
	"github.com/noah-isme/card-order-api/internal/models"
	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
)

type applicationRepository interface {
	Create(ctx context.Context, input models.NewApplication) (*models.Application, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindByIDAndEmail(ctx context.Context, id, email string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, actor string) error
	UpdateAttachment(ctx context.Context, id, url, actor string) error
	UploadDraftFile(ctx context.Context, content []byte, originalName, contentType, id string) (string, error)
}

type applicationNotifier interface {
	ApplicationSubmitted(app *models.Application)
	DraftReady(app *models.Application)
	ProductionApproved(app *models.Application)
	ModificationRequested(app *models.Application, reason string)
	OrderCompleted(app *models.Application)
}

type submissionMetrics interface {
	RecordSubmission()
}

// ApplicationServiceConfig tunes workflow rules.
type ApplicationServiceConfig struct {
	// EnforceTransitions rejects status changes outside the lifecycle graph.
	EnforceTransitions bool
	// DefaultActor is recorded as processedBy for admin actions without an
	// authenticated name.
	DefaultActor string
	MaxDraftSize int64
}

// ApplicationService implements the order workflow behind the HTTP surface.
type ApplicationService struct {
	repo      applicationRepository
	notifier  applicationNotifier
	metrics   submissionMetrics
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ApplicationServiceConfig
}

// NewApplicationService constructs the workflow service.
func NewApplicationService(repo applicationRepository, notifier applicationNotifier, metrics submissionMetrics, validate *validator.Validate, logger *zap.Logger, cfg ApplicationServiceConfig) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.DefaultActor == "" {
		cfg.DefaultActor = "관리자"
	}
	return &ApplicationService{
		repo:      repo,
		notifier:  notifier,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Submit validates and records a new order, then notifies the applicant and
// the administrator.
func (s *ApplicationService) Submit(ctx context.Context, req dto.SubmitApplicationRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.LawyerName = strings.TrimSpace(req.LawyerName)
	req.Remarks = strings.TrimSpace(req.Remarks)

	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "필수 항목을 확인해주세요.")
	}
	same, ok := models.ParseYesNo(req.SameAsExisting)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "기존 명함 동일 여부를 선택해주세요.")
	}
	kind, ok := models.ParseLawyerKind(req.IsLawyer)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "변호사 여부를 선택해주세요.")
	}
	if kind == models.KindStaff && req.LawyerName == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "담당변호사를 입력해주세요.")
	}

	app, err := s.repo.Create(ctx, models.NewApplication{
		ApplicantEmail: req.Email,
		ApplicantName:  req.Name,
		Quantity:       int(req.Quantity),
		SameAsExisting: same,
		IsLawyer:       kind,
		LawyerName:     req.LawyerName,
		Remarks:        req.Remarks,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("application submitted", zap.String("application_id", app.ID))
	if s.metrics != nil {
		s.metrics.RecordSubmission()
	}
	s.notify(func(n applicationNotifier) { n.ApplicationSubmitted(app) })
	return app.ID, nil
}

// List returns every application or those with the given status. An empty
// filter or "all" lists everything.
func (s *ApplicationService) List(ctx context.Context, statusFilter string) ([]models.Application, error) {
	statusFilter = strings.TrimSpace(statusFilter)
	filter := models.ApplicationFilter{}
	if statusFilter != "" && !strings.EqualFold(statusFilter, "all") {
		status, err := models.ParseStatus(statusFilter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "올바르지 않은 상태입니다.")
		}
		filter.Status = &status
	}
	return s.repo.List(ctx, filter)
}

// Get returns one application for the admin detail view.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.ErrNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateStatus sets the status on behalf of an administrator. The status is
// parsed before anything is read or written.
func (s *ApplicationService) UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, actor string) error {
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "올바르지 않은 상태입니다.")
	}
	id := strings.TrimSpace(req.ApplicationID)
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "신청ID를 입력해주세요.")
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkTransition(app.Status, status); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, status, s.actor(actor)); err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("application_id", id),
		zap.String("from", string(app.Status)),
		zap.String("to", string(status)),
	}
	if app.Status.Terminal() && status != app.Status {
		s.logger.Warn("closed application reopened", fields...)
	} else {
		s.logger.Info("application status changed", fields...)
	}
	if status == models.StatusCompleted && app.Status != models.StatusCompleted {
		app.Status = status
		app.StatusLabel = status.Label()
		s.notify(func(n applicationNotifier) { n.OrderCompleted(app) })
	}
	return nil
}

// UploadDraft stores the draft, links it on the row, marks the application
// DraftDelivered and sends the applicant the confirmation link.
func (s *ApplicationService) UploadDraft(ctx context.Context, upload dto.DraftUpload, actor string) error {
	id := strings.TrimSpace(upload.ApplicationID)
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "신청ID를 입력해주세요.")
	}
	if len(upload.Content) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "파일을 업로드해주세요.")
	}
	if s.cfg.MaxDraftSize > 0 && int64(len(upload.Content)) > s.cfg.MaxDraftSize {
		return appErrors.Clone(appErrors.ErrValidation, "파일 크기가 허용 범위를 초과했습니다.")
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkTransition(app.Status, models.StatusDraftDelivered); err != nil {
		return err
	}

	by := s.actor(actor)
	link, err := s.repo.UploadDraftFile(ctx, upload.Content, upload.FileName, upload.ContentType, id)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateAttachment(ctx, id, link, by); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, models.StatusDraftDelivered, by); err != nil {
		return err
	}

	s.logger.Info("draft delivered", zap.String("application_id", id))
	app.Status = models.StatusDraftDelivered
	app.StatusLabel = app.Status.Label()
	app.AttachmentURL = link
	s.notify(func(n applicationNotifier) { n.DraftReady(app) })
	return nil
}

// ConfirmDraft returns the draft link while the application awaits the
// applicant's decision.
func (s *ApplicationService) ConfirmDraft(ctx context.Context, id, email string) (*dto.ConfirmDraftResponse, error) {
	app, err := s.findForApplicant(ctx, id, email, "잘못된 접근입니다.")
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusDraftDelivered {
		return nil, appErrors.Clone(appErrors.ErrValidation, "초안 확인 단계가 아닙니다.")
	}
	return &dto.ConfirmDraftResponse{
		ApplicationID: app.ID,
		Name:          app.ApplicantName,
		AttachmentURL: app.AttachmentURL,
	}, nil
}

// Approve moves the application into production on the applicant's behalf.
func (s *ApplicationService) Approve(ctx context.Context, req dto.ApplicantRequest) error {
	app, err := s.findForApplicant(ctx, req.ApplicationID, req.Email, "잘못된 접근입니다.")
	if err != nil {
		return err
	}
	if err := s.checkTransition(app.Status, models.StatusInProduction); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, app.ID, models.StatusInProduction, ""); err != nil {
		return err
	}

	s.logger.Info("production approved", zap.String("application_id", app.ID))
	app.Status = models.StatusInProduction
	app.StatusLabel = app.Status.Label()
	s.notify(func(n applicationNotifier) { n.ProductionApproved(app) })
	return nil
}

// RequestModification records the applicant's change request and forwards
// the reason to the administrator.
func (s *ApplicationService) RequestModification(ctx context.Context, req dto.ModificationRequest) error {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return appErrors.Clone(appErrors.ErrValidation, "수정 요청 사유를 입력해주세요.")
	}
	app, err := s.findForApplicant(ctx, req.ApplicationID, req.Email, "잘못된 접근입니다.")
	if err != nil {
		return err
	}
	if err := s.checkTransition(app.Status, models.StatusModificationRequested); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, app.ID, models.StatusModificationRequested, ""); err != nil {
		return err
	}

	s.logger.Info("modification requested", zap.String("application_id", app.ID))
	app.Status = models.StatusModificationRequested
	app.StatusLabel = app.Status.Label()
	s.notify(func(n applicationNotifier) { n.ModificationRequested(app, reason) })
	return nil
}

// QueryStatus answers the applicant status lookup.
func (s *ApplicationService) QueryStatus(ctx context.Context, id, email string) (*dto.StatusQueryResponse, error) {
	app, err := s.findForApplicant(ctx, id, email, "신청ID와 이메일을 입력해주세요.")
	if err != nil {
		return nil, err
	}
	resp := &dto.StatusQueryResponse{
		ApplicationID: app.ID,
		Status:        string(app.Status),
		StatusLabel:   app.StatusLabel,
		Name:          app.ApplicantName,
		Quantity:      app.Quantity,
	}
	if !app.CreatedAt.IsZero() {
		resp.RegisteredDate = app.CreatedAt.UTC().Format(time.RFC3339)
	}
	if app.ProcessedAt != nil {
		resp.ProcessedDate = app.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

func (s *ApplicationService) findForApplicant(ctx context.Context, id, email, missingMessage string) (*models.Application, error) {
	id = strings.TrimSpace(id)
	email = strings.TrimSpace(email)
	if id == "" || email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, missingMessage)
	}
	return s.repo.FindByIDAndEmail(ctx, id, email)
}

func (s *ApplicationService) checkTransition(from, to models.ApplicationStatus) error {
	if !s.cfg.EnforceTransitions || models.CanTransition(from, to) {
		return nil
	}
	return appErrors.Wrap(errors.New(string(from)+" -> "+string(to)),
		appErrors.ErrInvalidTransition.Code, appErrors.ErrInvalidTransition.Status, appErrors.ErrInvalidTransition.Message)
}

func (s *ApplicationService) actor(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return s.cfg.DefaultActor
}

// notify runs a notification without letting it affect the caller.
func (s *ApplicationService) notify(fn func(applicationNotifier)) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("notification dispatch panicked", zap.Any("panic", r))
		}
	}()
	fn(s.notifier)
}
