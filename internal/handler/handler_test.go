package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/card-order-api/internal/dto"
	"github.com/noah-isme/card-order-api/internal/middleware"
	"github.com/noah-isme/card-order-api/internal/models"
	"github.com/noah-isme/card-order-api/internal/service"
	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
	"github.com/noah-isme/card-order-api/pkg/middleware/cors"
	"github.com/noah-isme/card-order-api/pkg/middleware/ratelimit"
	"github.com/noah-isme/card-order-api/pkg/response"
)

type applicationServiceMock struct {
	submitID  string
	submitErr error
	submitted []dto.SubmitApplicationRequest

	confirmResp *dto.ConfirmDraftResponse
	statusResp  *dto.StatusQueryResponse
	err         error

	approved []dto.ApplicantRequest
	modified []dto.ModificationRequest

	listed     []string
	listResp   []models.Application
	getResp    *models.Application
	updates    []dto.UpdateStatusRequest
	actors     []string
	uploads    []dto.DraftUpload
	adminErr   error
	statusSeen []string
}

func (m *applicationServiceMock) Submit(_ context.Context, req dto.SubmitApplicationRequest) (string, error) {
	m.submitted = append(m.submitted, req)
	return m.submitID, m.submitErr
}

func (m *applicationServiceMock) ConfirmDraft(_ context.Context, id, email string) (*dto.ConfirmDraftResponse, error) {
	m.statusSeen = append(m.statusSeen, id+"|"+email)
	return m.confirmResp, m.err
}

func (m *applicationServiceMock) Approve(_ context.Context, req dto.ApplicantRequest) error {
	m.approved = append(m.approved, req)
	return m.err
}

func (m *applicationServiceMock) RequestModification(_ context.Context, req dto.ModificationRequest) error {
	m.modified = append(m.modified, req)
	return m.err
}

func (m *applicationServiceMock) QueryStatus(_ context.Context, id, email string) (*dto.StatusQueryResponse, error) {
	m.statusSeen = append(m.statusSeen, id+"|"+email)
	return m.statusResp, m.err
}

func (m *applicationServiceMock) List(_ context.Context, statusFilter string) ([]models.Application, error) {
	m.listed = append(m.listed, statusFilter)
	return m.listResp, m.adminErr
}

func (m *applicationServiceMock) Get(_ context.Context, _ string) (*models.Application, error) {
	return m.getResp, m.adminErr
}

func (m *applicationServiceMock) UpdateStatus(_ context.Context, req dto.UpdateStatusRequest, actor string) error {
	m.updates = append(m.updates, req)
	m.actors = append(m.actors, actor)
	return m.adminErr
}

func (m *applicationServiceMock) UploadDraft(_ context.Context, upload dto.DraftUpload, actor string) error {
	m.uploads = append(m.uploads, upload)
	m.actors = append(m.actors, actor)
	return m.adminErr
}

func newTestRouter(svc *applicationServiceMock, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cors.New(nil))
	RegisterRoutes(r, Routes{
		Applications: NewApplicationHandler(svc),
		Admin:        NewAdminHandler(svc, 1024),
		Export:       NewExportHandler(service.NewExportService(svc, nil)),
		Metrics:      NewMetricsHandler(nil),
		AdminGuard:   guard,
	})
	return r
}

func perform(r *gin.Engine, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestSubmitReturnsApplicationID(t *testing.T) {
	svc := &applicationServiceMock{submitID: "LN-2025-4821"}
	r := newTestRouter(svc, nil)

	body := []byte(`{"name":"Kim","email":"kim@x.com","quantity":"2","sameAsExisting":"No","isLawyer":"Staff","lawyerName":"Park"}`)
	w := perform(r, http.MethodPost, "/api/application-submit", body, "application/json")

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "LN-2025-4821", env.ApplicationID)
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, dto.Quantity(2), svc.submitted[0].Quantity)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestSubmitMalformedBody(t *testing.T) {
	svc := &applicationServiceMock{}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodPost, "/api/application-submit", []byte(`{"quantity":1.5}`), "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
	assert.Empty(t, svc.submitted)
}

func TestSubmitHidesRemoteFailureDetail(t *testing.T) {
	svc := &applicationServiceMock{submitErr: appErrors.Remote(errors.New("graph: 503 serviceNotAvailable"), "")}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodPost, "/api/application-submit", []byte(`{"name":"Kim"}`), "application/json")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "신청 처리 중 오류가 발생했습니다.", env.Message)
	assert.Equal(t, "REMOTE_UNAVAILABLE", env.Code)
	assert.NotContains(t, w.Body.String(), "serviceNotAvailable")
}

func TestWrongMethodReturns405(t *testing.T) {
	r := newTestRouter(&applicationServiceMock{}, nil)

	w := perform(r, http.MethodGet, "/api/application-submit", nil, "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Method not allowed", env.Message)

	w = perform(r, http.MethodPost, "/api/application-status", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPreflightReturns200(t *testing.T) {
	r := newTestRouter(&applicationServiceMock{}, nil)

	w := perform(r, http.MethodOptions, "/api/admin-upload", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Body.String())
}

func TestStatusQueryPassesQueryParams(t *testing.T) {
	svc := &applicationServiceMock{statusResp: &dto.StatusQueryResponse{ApplicationID: "LN-2025-4821", Status: "Requested", StatusLabel: "신청"}}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodGet, "/api/application-status?applicationId=LN-2025-4821&email=kim%40x.com", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"LN-2025-4821|kim@x.com"}, svc.statusSeen)
	assert.Contains(t, w.Body.String(), `"statusLabel":"신청"`)
}

func TestConfirmPassesQueryParams(t *testing.T) {
	svc := &applicationServiceMock{confirmResp: &dto.ConfirmDraftResponse{}}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodGet, "/api/application-confirm?applicationId=LN-2025-4821&email=kim%40x.com&email=other%40x.com", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodGet, "/api/application-confirm?applicationId=LN-2025-4821", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"LN-2025-4821|kim@x.com", "LN-2025-4821|"}, svc.statusSeen)
}

func TestConfirmNotFound(t *testing.T) {
	svc := &applicationServiceMock{err: appErrors.ErrNotFound}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodGet, "/api/application-confirm?applicationId=LN-2025-0001&email=a%40b.c", nil, "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "해당 신청 내역을 찾을 수 없습니다.", decodeEnvelope(t, w).Message)
}

func TestApproveAndModify(t *testing.T) {
	svc := &applicationServiceMock{}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodPost, "/api/application-approve", []byte(`{"applicationId":"LN-2025-4821","email":"kim@x.com"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "제작이 승인되었습니다.", decodeEnvelope(t, w).Message)

	w = perform(r, http.MethodPost, "/api/application-modify", []byte(`{"applicationId":"LN-2025-4821","email":"kim@x.com","reason":"로고 변경"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.modified, 1)
	assert.Equal(t, "로고 변경", svc.modified[0].Reason)
}

func TestAdminListUsesStatusFilter(t *testing.T) {
	svc := &applicationServiceMock{}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodGet, "/api/admin-applications?status=%EC%A0%9C%EC%9E%91", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())

	w = perform(r, http.MethodGet, "/api/admin-application", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"제작", ""}, svc.listed)
}

func TestAdminDetailNotFound(t *testing.T) {
	svc := &applicationServiceMock{adminErr: appErrors.ErrNotFound}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodGet, "/api/admin-detail?applicationId=LN-2025-0001", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "해당 신청을 찾을 수 없습니다.", decodeEnvelope(t, w).Message)
}

func TestAdminStatusInvalidStatus(t *testing.T) {
	svc := &applicationServiceMock{adminErr: appErrors.Clone(appErrors.ErrValidation, "올바르지 않은 상태입니다.")}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodPost, "/api/admin-status", []byte(`{"applicationId":"LN-2025-4821","status":"Shipped"}`), "application/json")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "올바르지 않은 상태입니다.", decodeEnvelope(t, w).Message)
}

func TestAdminStatusRecordsAuthenticatedActor(t *testing.T) {
	svc := &applicationServiceMock{}
	guard := func(c *gin.Context) {
		c.Set(middleware.ContextAdminKey, &models.AdminClaims{Name: "Lee"})
		c.Next()
	}
	r := newTestRouter(svc, guard)

	w := perform(r, http.MethodPost, "/api/admin-status", []byte(`{"applicationId":"LN-2025-4821","status":"Completed"}`), "application/json")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "상태가 변경되었습니다.", decodeEnvelope(t, w).Message)
	assert.Equal(t, []string{"Lee"}, svc.actors)
}

func TestAdminGuardBlocksAdminRoutesOnly(t *testing.T) {
	svc := &applicationServiceMock{statusResp: &dto.StatusQueryResponse{}}
	guard := func(c *gin.Context) { response.Abort(c, appErrors.ErrUnauthorized) }
	r := newTestRouter(svc, guard)

	w := perform(r, http.MethodGet, "/api/admin-applications", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, svc.listed)

	w = perform(r, http.MethodGet, "/api/application-status?applicationId=x&email=y", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadWithoutFileIsRejected(t *testing.T) {
	svc := &applicationServiceMock{}
	r := newTestRouter(svc, nil)

	body, contentType := multipartBody(t, map[string]string{"applicationId": "LN-2025-4821"}, "", nil)
	w := perform(r, http.MethodPost, "/api/admin-upload", body, contentType)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "파일을 업로드해주세요.", decodeEnvelope(t, w).Message)
	assert.Empty(t, svc.uploads)
}

func TestUploadNotMultipart(t *testing.T) {
	svc := &applicationServiceMock{}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodPost, "/api/admin-upload", []byte(`{}`), "application/json")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "파일 업로드 오류", decodeEnvelope(t, w).Message)
	assert.Empty(t, svc.uploads)
}

func TestUploadTooLarge(t *testing.T) {
	svc := &applicationServiceMock{}
	r := newTestRouter(svc, nil)

	body, contentType := multipartBody(t, map[string]string{"applicationId": "LN-2025-4821"}, "big.pdf", bytes.Repeat([]byte("x"), 2<<20))
	w := perform(r, http.MethodPost, "/api/admin-upload", body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.uploads)
}

func TestUploadForwardsFile(t *testing.T) {
	svc := &applicationServiceMock{}
	r := newTestRouter(svc, nil)

	body, contentType := multipartBody(t, map[string]string{"applicationId": "LN-2025-4821"}, "draft.pdf", []byte("%PDF-1.4"))
	w := perform(r, http.MethodPost, "/api/admin-upload", body, contentType)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "초안이 업로드되고 신청자에게 전달되었습니다.", decodeEnvelope(t, w).Message)
	require.Len(t, svc.uploads, 1)
	assert.Equal(t, "LN-2025-4821", svc.uploads[0].ApplicationID)
	assert.Equal(t, "draft.pdf", svc.uploads[0].FileName)
	assert.Equal(t, []byte("%PDF-1.4"), svc.uploads[0].Content)
	assert.Equal(t, []string{""}, svc.actors)
}

func TestUploadRemoteFailureMessage(t *testing.T) {
	svc := &applicationServiceMock{adminErr: appErrors.Remote(errors.New("drive"), "파일 업로드 중 오류가 발생했습니다.")}
	r := newTestRouter(svc, nil)

	body, contentType := multipartBody(t, map[string]string{"applicationId": "LN-2025-4821"}, "draft.pdf", []byte("x"))
	w := perform(r, http.MethodPost, "/api/admin-upload", body, contentType)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "업로드 중 오류가 발생했습니다.", decodeEnvelope(t, w).Message)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	r := newTestRouter(&applicationServiceMock{}, nil)

	w := perform(r, http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestAdminExportDownloadsCSV(t *testing.T) {
	svc := &applicationServiceMock{listResp: []models.Application{{ID: "LN-2025-4821", Status: models.StatusRequested, StatusLabel: "신청", Quantity: 2}}}
	r := newTestRouter(svc, nil)

	w := perform(r, http.MethodGet, "/api/admin-export?status=all", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")
	assert.Contains(t, w.Body.String(), "LN-2025-4821,신청")
	assert.Equal(t, []string{"all"}, svc.listed)
}

type rejectingAuthService struct {
	calls int
}

func (s *rejectingAuthService) Login(context.Context, models.LoginRequest) (*models.LoginResponse, error) {
	s.calls++
	return nil, appErrors.ErrInvalidCredentials
}

func newLimitedRouter(t *testing.T, proxies []string, svc *applicationServiceMock, auth *rejectingAuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := NewEngine(EngineConfig{TrustedProxies: proxies})
	require.NoError(t, err)
	RegisterRoutes(r, Routes{
		Applications: NewApplicationHandler(svc),
		Auth:         NewAuthHandler(auth),
		SubmitLimit:  ratelimit.New(1, 1).Middleware(),
		LoginLimit:   ratelimit.New(1, 1).Middleware(),
	})
	return r
}

func sendFrom(r *gin.Engine, path, remoteAddr, forwardedFor string, body []byte) int {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestSubmitLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	svc := &applicationServiceMock{submitID: "LN-2025-4821"}
	r := newLimitedRouter(t, nil, svc, &rejectingAuthService{})

	allowed := 0
	for i := 0; i < 20; i++ {
		code := sendFrom(r, "/api/application-submit", "203.0.113.7:40000", fmt.Sprintf("198.51.100.%d", i+1), []byte(`{"name":"Kim"}`))
		if code == http.StatusOK {
			allowed++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, code)
		}
	}
	assert.Equal(t, 1, allowed)
	assert.Len(t, svc.submitted, 1)
}

func TestSubmitLimitHonoursForwardedForFromTrustedProxy(t *testing.T) {
	svc := &applicationServiceMock{submitID: "LN-2025-4821"}
	r := newLimitedRouter(t, []string{"10.0.0.0/8"}, svc, &rejectingAuthService{})

	assert.Equal(t, http.StatusOK, sendFrom(r, "/api/application-submit", "10.0.0.5:40000", "198.51.100.1", []byte(`{}`)))
	assert.Equal(t, http.StatusOK, sendFrom(r, "/api/application-submit", "10.0.0.5:40000", "198.51.100.2", []byte(`{}`)))
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(r, "/api/application-submit", "10.0.0.5:40000", "198.51.100.2", []byte(`{}`)))
}

func TestAdminLoginIsRateLimited(t *testing.T) {
	auth := &rejectingAuthService{}
	r := newLimitedRouter(t, nil, &applicationServiceMock{}, auth)
	body := []byte(`{"username":"admin","password":"guess"}`)

	assert.Equal(t, http.StatusUnauthorized, sendFrom(r, "/api/admin-login", "203.0.113.7:40000", "", body))
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(r, "/api/admin-login", "203.0.113.7:40000", "", body))
	assert.Equal(t, 1, auth.calls)
}

func TestNewEngineRejectsBadProxy(t *testing.T) {
	_, err := NewEngine(EngineConfig{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}
