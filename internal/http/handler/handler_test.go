package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/domain"
	httpHandler "github.com/salonos/salonos-backoffice/internal/http/handler"
	"github.com/salonos/salonos-backoffice/internal/repository"
)

func TestIntakeCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newStubIntakeRepo()
	h := httpHandler.NewIntakeHandler(repo, zap.NewNop())

	body := `{"salonName":"Bella Spa","ownerName":"Ana Lopez","email":"A@B.com","plan":"Standard"}`
	w := perform(h.Create, http.MethodPost, "/api/intake", body)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"status":"pending"`)

	stored := repo.last
	require.Equal(t, "a@b.com", stored.Email)
	require.Equal(t, "standard", stored.Plan)
	require.Equal(t, domain.RequestPending, stored.Status)
}

func TestIntakeCreateRejectsMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := httpHandler.NewIntakeHandler(newStubIntakeRepo(), zap.NewNop())

	w := perform(h.Create, http.MethodPost, "/api/intake", `{"salonName":"Bella Spa"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntakeCreateRejectsBadStagingKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := httpHandler.NewIntakeHandler(newStubIntakeRepo(), zap.NewNop())

	body := `{"salonName":"Bella Spa","ownerName":"Ana","email":"a@b.com","stagingKey":"salon_123_1"}`
	w := perform(h.Create, http.MethodPost, "/api/intake", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRequestStatusEnforcesStateMachine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newStubIntakeRepo()
	req := repo.seed(domain.IntakeRequest{SalonName: "Bella Spa", Status: domain.RequestPending})
	h := &httpHandler.AdminHandler{Intake: repo, Logger: zap.NewNop()}

	w := performWithParam(h.UpdateRequestStatus, "id", req.ID, `{"status":"contacted"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, domain.RequestContacted, repo.requests[req.ID].Status)

	w = performWithParam(h.UpdateRequestStatus, "id", req.ID, `{"status":"provisioned"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	w = performWithParam(h.UpdateRequestStatus, "id", req.ID, `{"status":"bogus"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newStubIntakeRepo()
	req := repo.seed(domain.IntakeRequest{SalonName: "Bella Spa", Status: domain.RequestApprovedPending})
	h := &httpHandler.AdminHandler{Intake: repo, Logger: zap.NewNop()}

	w := performWithParam(h.ConfirmPayment, "id", req.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, domain.RequestPaymentConfirmed, repo.requests[req.ID].Status)

	// A second confirmation has nothing to confirm.
	w = performWithParam(h.ConfirmPayment, "id", req.ID, "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func perform(fn gin.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	fn(c)
	return w
}

func performWithParam(fn gin.HandlerFunc, key, value, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: key, Value: value}}
	fn(c)
	return w
}

type stubIntakeRepo struct {
	requests map[string]domain.IntakeRequest
	last     domain.IntakeRequest
	seq      int
}

func newStubIntakeRepo() *stubIntakeRepo {
	return &stubIntakeRepo{requests: make(map[string]domain.IntakeRequest)}
}

func (r *stubIntakeRepo) seed(req domain.IntakeRequest) domain.IntakeRequest {
	r.seq++
	req.ID = "req-" + strconv.Itoa(r.seq)
	r.requests[req.ID] = req
	return req
}

func (r *stubIntakeRepo) Create(_ context.Context, req domain.IntakeRequest) (domain.IntakeRequest, error) {
	created := r.seed(req)
	r.last = created
	return created, nil
}

func (r *stubIntakeRepo) GetByID(_ context.Context, id string) (domain.IntakeRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return domain.IntakeRequest{}, repository.ErrNotFound
	}
	return req, nil
}

func (r *stubIntakeRepo) List(context.Context, repository.IntakeFilter) ([]domain.IntakeRequest, error) {
	return nil, errors.New("not implemented")
}

func (r *stubIntakeRepo) UpdateStatus(_ context.Context, id, status, notes string) error {
	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Status = status
	if notes != "" {
		req.Notes = notes
	}
	r.requests[id] = req
	return nil
}

func (r *stubIntakeRepo) LinkProvisioned(_ context.Context, id, tenantSlug, accountID string) error {
	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Status = domain.RequestProvisioned
	req.TenantSlug = tenantSlug
	req.AccountID = accountID
	r.requests[id] = req
	return nil
}

func (r *stubIntakeRepo) CountByStatus(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}
