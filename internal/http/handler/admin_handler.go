package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/domain"
	"github.com/salonos/salonos-backoffice/internal/provisioning"
	"github.com/salonos/salonos-backoffice/internal/repository"
)

// Monthly plan prices in USD, used for the estimated revenue figure on the
// admin dashboard.
var planPrices = map[string]float64{
	"basic":    15,
	"standard": 30,
	"premium":  50,
}

// AdminHandler serves the back-office surface: request triage, account
// management, the provisioning trigger and dashboard stats.
type AdminHandler struct {
	Intake           repository.IntakeRepository
	Accounts         repository.AccountRepository
	Tenants          repository.TenantRepository
	Orchestrator     *provisioning.Orchestrator
	ProvisionTimeout time.Duration
	Logger           *zap.Logger
}

// NewAdminHandler creates the admin handler set.
func NewAdminHandler(
	intake repository.IntakeRepository,
	accounts repository.AccountRepository,
	tenants repository.TenantRepository,
	orchestrator *provisioning.Orchestrator,
	provisionTimeout time.Duration,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		Intake:           intake,
		Accounts:         accounts,
		Tenants:          tenants,
		Orchestrator:     orchestrator,
		ProvisionTimeout: provisionTimeout,
		Logger:           logger,
	}
}

// ListRequests returns intake requests filtered by status and plan.
func (h *AdminHandler) ListRequests(c *gin.Context) {
	filter := repository.IntakeFilter{
		Status: c.Query("status"),
		Plan:   c.Query("plan"),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if filter.Status != "" && !domain.ValidRequestStatus(filter.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Unknown status filter."})
		return
	}

	requests, err := h.Intake.List(c.Request.Context(), filter)
	if err != nil {
		h.Logger.Error("list requests failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not list requests."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// GetRequest returns one intake request with its full profile.
func (h *AdminHandler) GetRequest(c *gin.Context) {
	req, err := h.Intake.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "Request not found."})
		return
	}
	if err != nil {
		h.Logger.Error("get request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not load the request."})
		return
	}
	c.JSON(http.StatusOK, req)
}

type statusUpdate struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

// UpdateRequestStatus moves an intake request through its lifecycle. Only
// transitions permitted by the state machine are accepted.
func (h *AdminHandler) UpdateRequestStatus(c *gin.Context) {
	var upd statusUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid status payload."})
		return
	}
	if !domain.ValidRequestStatus(upd.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Unknown status."})
		return
	}

	req, err := h.Intake.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "Request not found."})
		return
	}
	if err != nil {
		h.Logger.Error("get request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not load the request."})
		return
	}

	if !domain.CanTransition(req.Status, upd.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error":             "invalid_transition",
			"error_description": "Cannot move from " + req.Status + " to " + upd.Status + ".",
		})
		return
	}

	if err := h.Intake.UpdateStatus(c.Request.Context(), req.ID, upd.Status, upd.Notes); err != nil {
		h.Logger.Error("status update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not update the request."})
		return
	}

	h.Logger.Info("request status updated",
		zap.String("request_id", req.ID),
		zap.String("from", req.Status),
		zap.String("to", upd.Status),
	)
	c.JSON(http.StatusOK, gin.H{"id": req.ID, "status": upd.Status})
}

// ConfirmPayment marks an approved request as paid, making it eligible for
// provisioning. The payment provider's webhook protocol lives outside this
// service; an operator confirms manually after checking the provider
// dashboard.
func (h *AdminHandler) ConfirmPayment(c *gin.Context) {
	req, err := h.Intake.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "Request not found."})
		return
	}
	if err != nil {
		h.Logger.Error("get request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not load the request."})
		return
	}

	if !domain.CanTransition(req.Status, domain.RequestPaymentConfirmed) {
		c.JSON(http.StatusConflict, gin.H{
			"error":             "invalid_transition",
			"error_description": "Request is not awaiting payment.",
		})
		return
	}

	if err := h.Intake.UpdateStatus(c.Request.Context(), req.ID, domain.RequestPaymentConfirmed, ""); err != nil {
		h.Logger.Error("payment confirmation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not update the request."})
		return
	}

	h.Logger.Info("payment confirmed", zap.String("request_id", req.ID))
	c.JSON(http.StatusOK, gin.H{"id": req.ID, "status": domain.RequestPaymentConfirmed})
}

// Provision runs the full pipeline for a paid request. The response carries
// the temporary secret exactly once; it is never persisted in plaintext and
// never logged.
func (h *AdminHandler) Provision(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.ProvisionTimeout)
	defer cancel()

	result, err := h.Orchestrator.Provision(ctx, c.Param("id"))
	if err != nil {
		var vErr *provisioning.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "error_description": vErr.Error()})
			return
		}
		var pErr *provisioning.ProvisioningFailedError
		if errors.As(err, &pErr) {
			if errors.Is(pErr.Err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "Request not found."})
				return
			}
			h.Logger.Error("provisioning failed",
				zap.String("request_id", c.Param("id")),
				zap.String("step", pErr.Step),
				zap.Error(pErr.Err),
			)
			c.JSON(http.StatusBadGateway, gin.H{
				"error":             "provisioning_failed",
				"error_description": "Provisioning failed at step: " + pErr.Step + ". The request may be retried.",
			})
			return
		}
		h.Logger.Error("provisioning failed", zap.String("request_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Provisioning failed."})
		return
	}

	status := http.StatusOK
	if !result.AlreadyProvisioned {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

type accountStatusUpdate struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// UpdateAccountStatus suspends, reactivates or cancels an account.
func (h *AdminHandler) UpdateAccountStatus(c *gin.Context) {
	var upd accountStatusUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid status payload."})
		return
	}
	if !domain.ValidAccountStatus(upd.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Unknown account status."})
		return
	}

	id := c.Param("id")
	if err := h.Accounts.UpdateStatus(c.Request.Context(), id, upd.Status, upd.Reason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "Account not found."})
			return
		}
		h.Logger.Error("account status update failed", zap.String("account_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not update the account."})
		return
	}

	h.Logger.Info("account status updated", zap.String("account_id", id), zap.String("status", upd.Status))
	c.JSON(http.StatusOK, gin.H{"id": id, "status": upd.Status})
}

// Stats returns the dashboard aggregates: request counts by status, account
// counts by status, active accounts per plan and the estimated monthly
// revenue from the plan price table.
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	requestCounts, err := h.Intake.CountByStatus(ctx)
	if err != nil {
		h.Logger.Error("request stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not compute stats."})
		return
	}
	accountCounts, err := h.Accounts.CountByStatus(ctx)
	if err != nil {
		h.Logger.Error("account stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not compute stats."})
		return
	}
	planCounts, err := h.Accounts.ActivePlanCounts(ctx)
	if err != nil {
		h.Logger.Error("plan stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not compute stats."})
		return
	}

	var revenue float64
	for plan, n := range planCounts {
		revenue += planPrices[plan] * float64(n)
	}

	c.JSON(http.StatusOK, gin.H{
		"requestsByStatus": requestCounts,
		"accountsByStatus": accountCounts,
		"activeByPlan":     planCounts,
		"estimatedRevenue": revenue,
	})
}

// StaleTenants lists tenants whose provisioning marker has been stuck
// longer than the given age, for manual reconciliation.
func (h *AdminHandler) StaleTenants(c *gin.Context) {
	age := h.ProvisionTimeout
	if v := c.Query("olderThan"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid olderThan duration."})
			return
		}
		age = parsed
	}

	slugs, err := h.Tenants.StaleProvisioning(c.Request.Context(), age)
	if err != nil {
		h.Logger.Error("stale tenant query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not list stale tenants."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": slugs, "count": len(slugs)})
}

func queryInt(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
