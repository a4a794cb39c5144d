package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/card-order-api/internal/dto"
	"github.com/noah-isme/card-order-api/internal/models"
	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
)

type mockApplicationRepo struct {
	apps      map[string]*models.Application
	order     []string
	nextID    int
	calls     []string
	createErr error
	updateErr error
	uploadErr error
	now       time.Time
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{
		apps:   map[string]*models.Application{},
		nextID: 4821,
		now:    time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC),
	}
}

func (m *mockApplicationRepo) Create(_ context.Context, input models.NewApplication) (*models.Application, error) {
	m.calls = append(m.calls, "create")
	if m.createErr != nil {
		return nil, m.createErr
	}
	id := fmt.Sprintf("LN-2025-%04d", m.nextID)
	m.nextID++
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
		CreatedAt:      m.now,
	}
	m.apps[id] = app
	m.order = append(m.order, id)
	copy := *app
	return &copy, nil
}

func (m *mockApplicationRepo) FindByID(_ context.Context, id string) (*models.Application, error) {
	m.calls = append(m.calls, "find")
	app, ok := m.apps[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	copy := *app
	return &copy, nil
}

func (m *mockApplicationRepo) FindByIDAndEmail(ctx context.Context, id, email string) (*models.Application, error) {
	app, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.ApplicantEmail != email {
		return nil, appErrors.ErrNotFound
	}
	return app, nil
}

func (m *mockApplicationRepo) List(_ context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	m.calls = append(m.calls, "list")
	var out []models.Application
	for _, id := range m.order {
		app := m.apps[id]
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		out = append(out, *app)
	}
	return out, nil
}

func (m *mockApplicationRepo) UpdateStatus(_ context.Context, id string, status models.ApplicationStatus, actor string) error {
	m.calls = append(m.calls, "status:"+string(status))
	if m.updateErr != nil {
		return m.updateErr
	}
	app, ok := m.apps[id]
	if !ok {
		return appErrors.ErrNotFound
	}
	app.Status = status
	app.StatusLabel = status.Label()
	app.ProcessedBy = actor
	at := m.now
	app.ProcessedAt = &at
	return nil
}

func (m *mockApplicationRepo) UpdateAttachment(_ context.Context, id, url, actor string) error {
	m.calls = append(m.calls, "attachment")
	app, ok := m.apps[id]
	if !ok {
		return appErrors.ErrNotFound
	}
	app.AttachmentURL = url
	app.ProcessedBy = actor
	return nil
}

func (m *mockApplicationRepo) UploadDraftFile(_ context.Context, content []byte, originalName, _ string, id string) (string, error) {
	m.calls = append(m.calls, "upload")
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	return "https://share.example.com/" + id + "/" + originalName + fmt.Sprintf("?n=%d", len(content)), nil
}

func (m *mockApplicationRepo) writes() []string {
	var out []string
	for _, c := range m.calls {
		if c != "find" && c != "list" {
			out = append(out, c)
		}
	}
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	reason string
}

func (n *recordingNotifier) add(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) ApplicationSubmitted(app *models.Application) {
	n.add("submitted:" + app.ID)
}
func (n *recordingNotifier) DraftReady(app *models.Application) {
	n.add("draft:" + app.AttachmentURL)
}
func (n *recordingNotifier) ProductionApproved(app *models.Application) {
	n.add("approved:" + app.ID)
}
func (n *recordingNotifier) ModificationRequested(app *models.Application, reason string) {
	n.reason = reason
	n.add("modify:" + app.ID)
}
func (n *recordingNotifier) OrderCompleted(app *models.Application) {
	n.add("completed:" + app.ID)
}

type countingSubmissions struct{ n int }

func (c *countingSubmissions) RecordSubmission() { c.n++ }

func newTestApplicationService(cfg ApplicationServiceConfig) (*ApplicationService, *mockApplicationRepo, *recordingNotifier) {
	repo := newMockApplicationRepo()
	notifier := &recordingNotifier{}
	svc := NewApplicationService(repo, notifier, nil, nil, zap.NewNop(), cfg)
	return svc, repo, notifier
}

func kimRequest() dto.SubmitApplicationRequest {
	return dto.SubmitApplicationRequest{
		Name:           "Kim",
		Email:          "kim@x.com",
		Quantity:       2,
		SameAsExisting: "No",
		IsLawyer:       "Staff",
		LawyerName:     "Park",
	}
}

func TestApplicationLifecycleKimScenario(t *testing.T) {
	svc, repo, notifier := newTestApplicationService(ApplicationServiceConfig{EnforceTransitions: true})
	ctx := context.Background()

	id, err := svc.Submit(ctx, kimRequest())
	require.NoError(t, err)
	assert.Regexp(t, models.ApplicationIDPattern, id)

	err = svc.UploadDraft(ctx, dto.DraftUpload{ApplicationID: id, FileName: "draft.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}, "Lee")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraftDelivered, repo.apps[id].Status)
	assert.Equal(t, "Lee", repo.apps[id].ProcessedBy)
	assert.Contains(t, repo.apps[id].AttachmentURL, "draft.pdf")

	confirm, err := svc.ConfirmDraft(ctx, id, "kim@x.com")
	require.NoError(t, err)
	assert.Equal(t, repo.apps[id].AttachmentURL, confirm.AttachmentURL)

	require.NoError(t, svc.Approve(ctx, dto.ApplicantRequest{ApplicationID: id, Email: "kim@x.com"}))
	assert.Equal(t, models.StatusInProduction, repo.apps[id].Status)

	_, err = svc.ConfirmDraft(ctx, id, "kim@x.com")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	require.NoError(t, svc.UpdateStatus(ctx, dto.UpdateStatusRequest{ApplicationID: id, Status: "지급완료"}, ""))
	assert.Equal(t, models.StatusCompleted, repo.apps[id].Status)
	assert.Equal(t, "관리자", repo.apps[id].ProcessedBy)

	status, err := svc.QueryStatus(ctx, id, "kim@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Completed", status.Status)
	assert.Equal(t, "지급완료", status.StatusLabel)
	assert.Equal(t, 2, status.Quantity)
	assert.Equal(t, "2025-03-04T09:30:00Z", status.RegisteredDate)
	assert.Equal(t, "2025-03-04T09:30:00Z", status.ProcessedDate)

	assert.Equal(t, []string{
		"submitted:" + id,
		"draft:" + repo.apps[id].AttachmentURL,
		"approved:" + id,
		"completed:" + id,
	}, notifier.events)
}

func TestSubmitValidation(t *testing.T) {
	cases := map[string]func(r *dto.SubmitApplicationRequest){
		"missing name":        func(r *dto.SubmitApplicationRequest) { r.Name = "  " },
		"bad email":           func(r *dto.SubmitApplicationRequest) { r.Email = "kim" },
		"zero quantity":       func(r *dto.SubmitApplicationRequest) { r.Quantity = 0 },
		"unknown same":        func(r *dto.SubmitApplicationRequest) { r.SameAsExisting = "maybe" },
		"unknown kind":        func(r *dto.SubmitApplicationRequest) { r.IsLawyer = "intern" },
		"staff without name":  func(r *dto.SubmitApplicationRequest) { r.LawyerName = "" },
		"remarks over length": func(r *dto.SubmitApplicationRequest) { r.Remarks = strings.Repeat("가", 2001) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, repo, notifier := newTestApplicationService(ApplicationServiceConfig{})
			req := kimRequest()
			mutate(&req)

			_, err := svc.Submit(context.Background(), req)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
			assert.Empty(t, repo.calls)
			assert.Empty(t, notifier.events)
		})
	}
}

func TestSubmitAcceptsKoreanLabelsAndCountsMetric(t *testing.T) {
	repo := newMockApplicationRepo()
	metrics := &countingSubmissions{}
	svc := NewApplicationService(repo, nil, metrics, nil, nil, ApplicationServiceConfig{})

	req := kimRequest()
	req.SameAsExisting = "예"
	req.IsLawyer = "변호사"
	req.LawyerName = ""
	id, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.Yes, repo.apps[id].SameAsExisting)
	assert.Equal(t, models.KindLawyer, repo.apps[id].IsLawyer)
	assert.Equal(t, 1, metrics.n)
}

func TestSubmitPropagatesRepositoryFailure(t *testing.T) {
	svc, repo, notifier := newTestApplicationService(ApplicationServiceConfig{})
	repo.createErr = appErrors.Remote(errors.New("graph 503"), "")

	_, err := svc.Submit(context.Background(), kimRequest())
	assert.ErrorIs(t, err, appErrors.ErrRemoteUnavailable)
	assert.Empty(t, notifier.events)
}

func TestUpdateStatusRejectsUnknownStatusBeforeAnyAccess(t *testing.T) {
	svc, repo, _ := newTestApplicationService(ApplicationServiceConfig{})

	err := svc.UpdateStatus(context.Background(), dto.UpdateStatusRequest{ApplicationID: "LN-2025-4821", Status: "Shipped"}, "")
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "올바르지 않은 상태입니다.", appErrors.FromError(err).Message)
	assert.Empty(t, repo.calls)
}

func TestUpdateStatusMissingApplication(t *testing.T) {
	svc, repo, _ := newTestApplicationService(ApplicationServiceConfig{})

	err := svc.UpdateStatus(context.Background(), dto.UpdateStatusRequest{ApplicationID: "LN-2025-0001", Status: "Completed"}, "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, repo.writes())
}

func TestUpdateStatusTransitionEnforcement(t *testing.T) {
	ctx := context.Background()

	lenient, repo, _ := newTestApplicationService(ApplicationServiceConfig{})
	id, err := lenient.Submit(ctx, kimRequest())
	require.NoError(t, err)
	require.NoError(t, lenient.UpdateStatus(ctx, dto.UpdateStatusRequest{ApplicationID: id, Status: "Completed"}, "Lee"))
	assert.Equal(t, models.StatusCompleted, repo.apps[id].Status)

	strict, repo, _ := newTestApplicationService(ApplicationServiceConfig{EnforceTransitions: true})
	id, err = strict.Submit(ctx, kimRequest())
	require.NoError(t, err)
	err = strict.UpdateStatus(ctx, dto.UpdateStatusRequest{ApplicationID: id, Status: "Completed"}, "Lee")
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
	assert.Equal(t, models.StatusRequested, repo.apps[id].Status)

	require.NoError(t, strict.UpdateStatus(ctx, dto.UpdateStatusRequest{ApplicationID: id, Status: "삭제"}, "Lee"))
	assert.Equal(t, models.StatusDeleted, repo.apps[id].Status)
}

func TestUpdateStatusCompletedTwiceNotifiesOnce(t *testing.T) {
	svc, _, notifier := newTestApplicationService(ApplicationServiceConfig{})
	ctx := context.Background()
	id, err := svc.Submit(ctx, kimRequest())
	require.NoError(t, err)

	req := dto.UpdateStatusRequest{ApplicationID: id, Status: "Completed"}
	require.NoError(t, svc.UpdateStatus(ctx, req, ""))
	require.NoError(t, svc.UpdateStatus(ctx, req, ""))

	assert.Equal(t, []string{"submitted:" + id, "completed:" + id}, notifier.events)
}

func TestUploadDraftWithoutContentMakesNoChanges(t *testing.T) {
	svc, repo, notifier := newTestApplicationService(ApplicationServiceConfig{})
	ctx := context.Background()
	id, err := svc.Submit(ctx, kimRequest())
	require.NoError(t, err)
	repo.calls = nil

	err = svc.UploadDraft(ctx, dto.DraftUpload{ApplicationID: id, FileName: "draft.pdf"}, "")
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "파일을 업로드해주세요.", appErrors.FromError(err).Message)
	assert.Empty(t, repo.calls)
	assert.Equal(t, models.StatusRequested, repo.apps[id].Status)
	assert.Len(t, notifier.events, 1)
}

func TestUploadDraftEnforcesSizeLimit(t *testing.T) {
	svc, repo, _ := newTestApplicationService(ApplicationServiceConfig{MaxDraftSize: 4})

	err := svc.UploadDraft(context.Background(), dto.DraftUpload{ApplicationID: "LN-2025-4821", Content: []byte("12345")}, "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.calls)
}

func TestUploadDraftFailureLeavesStatus(t *testing.T) {
	svc, repo, notifier := newTestApplicationService(ApplicationServiceConfig{})
	ctx := context.Background()
	id, err := svc.Submit(ctx, kimRequest())
	require.NoError(t, err)
	repo.uploadErr = appErrors.Remote(errors.New("drive down"), "파일 업로드 중 오류가 발생했습니다.")

	err = svc.UploadDraft(ctx, dto.DraftUpload{ApplicationID: id, FileName: "a.pdf", Content: []byte("x")}, "")
	assert.ErrorIs(t, err, appErrors.ErrRemoteUnavailable)
	assert.Equal(t, models.StatusRequested, repo.apps[id].Status)
	assert.Empty(t, repo.apps[id].AttachmentURL)
	assert.Len(t, notifier.events, 1)
}

func TestUploadDraftWritesAttachmentBeforeStatus(t *testing.T) {
	svc, repo, _ := newTestApplicationService(ApplicationServiceConfig{})
	ctx := context.Background()
	id, err := svc.Submit(ctx, kimRequest())
	require.NoError(t, err)
	repo.calls = nil

	require.NoError(t, svc.UploadDraft(ctx, dto.DraftUpload{ApplicationID: id, FileName: "a.pdf", Content: []byte("x")}, ""))
	assert.Equal(t, []string{"upload", "attachment", "status:DraftDelivered"}, repo.writes())
}

func TestApplicantActionsRequireMatchingEmail(t *testing.T) {
	svc, repo, notifier := newTestApplicationService(ApplicationServiceConfig{})
	ctx := context.Background()
	id, err := svc.Submit(ctx, kimRequest())
	require.NoError(t, err)
	repo.calls = nil

	err = svc.Approve(ctx, dto.ApplicantRequest{ApplicationID: id, Email: "lee@x.com"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.QueryStatus(ctx, id, "lee@x.com")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.ConfirmDraft(ctx, "", "kim@x.com")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.Empty(t, repo.writes())
	assert.Len(t, notifier.events, 1)
}

func TestRequestModification(t *testing.T) {
	svc, repo, notifier := newTestApplicationService(ApplicationServiceConfig{EnforceTransitions: true})
	ctx := context.Background()
	id, err := svc.Submit(ctx, kimRequest())
	require.NoError(t, err)
	require.NoError(t, svc.UploadDraft(ctx, dto.DraftUpload{ApplicationID: id, FileName: "a.pdf", Content: []byte("x")}, ""))

	err = svc.RequestModification(ctx, dto.ModificationRequest{ApplicationID: id, Email: "kim@x.com", Reason: "   "})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "수정 요청 사유를 입력해주세요.", appErrors.FromError(err).Message)

	require.NoError(t, svc.RequestModification(ctx, dto.ModificationRequest{ApplicationID: id, Email: "kim@x.com", Reason: "직함 변경"}))
	assert.Equal(t, models.StatusModificationRequested, repo.apps[id].Status)
	assert.Empty(t, repo.apps[id].ProcessedBy)
	assert.Equal(t, "직함 변경", notifier.reason)
}

func TestListFilters(t *testing.T) {
	svc, _, _ := newTestApplicationService(ApplicationServiceConfig{})
	ctx := context.Background()
	first, err := svc.Submit(ctx, kimRequest())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, kimRequest())
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, dto.UpdateStatusRequest{ApplicationID: first, Status: "InProduction"}, ""))

	all, err := svc.List(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	all, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byLabel, err := svc.List(ctx, "제작")
	require.NoError(t, err)
	require.Len(t, byLabel, 1)
	assert.Equal(t, first, byLabel[0].ID)

	_, err = svc.List(ctx, "Shipped")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestGetUnknownApplication(t *testing.T) {
	svc, _, _ := newTestApplicationService(ApplicationServiceConfig{})

	_, err := svc.Get(context.Background(), "LN-2025-9999")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestUpdateStatusWarnsWhenClosedApplicationReopens(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	repo := newMockApplicationRepo()
	svc := NewApplicationService(repo, &recordingNotifier{}, nil, nil, zap.New(core), ApplicationServiceConfig{})
	ctx := context.Background()

	id, err := svc.Submit(ctx, kimRequest())
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, dto.UpdateStatusRequest{ApplicationID: id, Status: "Completed"}, ""))
	assert.Zero(t, logs.FilterMessage("closed application reopened").Len())

	require.NoError(t, svc.UpdateStatus(ctx, dto.UpdateStatusRequest{ApplicationID: id, Status: "제작"}, ""))
	reopened := logs.FilterMessage("closed application reopened").All()
	require.Len(t, reopened, 1)
	assert.Equal(t, zapcore.WarnLevel, reopened[0].Level)
	assert.Equal(t, "Completed", reopened[0].ContextMap()["from"])
	assert.Equal(t, "InProduction", reopened[0].ContextMap()["to"])
}
