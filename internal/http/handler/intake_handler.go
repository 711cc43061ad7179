package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/domain"
	"github.com/salonos/salonos-backoffice/internal/repository"
)

// IntakeHandler serves the public onboarding endpoint.
type IntakeHandler struct {
	Intake repository.IntakeRepository
	Logger *zap.Logger
}

// NewIntakeHandler creates the public intake handler.
func NewIntakeHandler(intake repository.IntakeRepository, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{Intake: intake, Logger: logger}
}

type intakeRequest struct {
	SalonName  string               `json:"salonName" binding:"required"`
	OwnerName  string               `json:"ownerName" binding:"required"`
	Email      string               `json:"email" binding:"required,email"`
	Phone      string               `json:"phone"`
	Address    string               `json:"address"`
	City       string               `json:"city"`
	Country    string               `json:"country"`
	Plan       string               `json:"plan"`
	Notes      string               `json:"notes"`
	StagingKey string               `json:"stagingKey"`
	Profile    domain.TenantProfile `json:"profile"`
}

// Create receives a completed onboarding form and stores it as a pending
// request.
func (h *IntakeHandler) Create(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid intake payload."})
		return
	}

	if req.StagingKey != "" && !domain.ValidStagingKey(req.StagingKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid staging key."})
		return
	}

	plan := strings.ToLower(strings.TrimSpace(req.Plan))
	if plan == "" {
		plan = "basic"
	}

	created, err := h.Intake.Create(c.Request.Context(), domain.IntakeRequest{
		SalonName:  req.SalonName,
		OwnerName:  req.OwnerName,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		Country:    req.Country,
		Plan:       plan,
		Notes:      req.Notes,
		StagingKey: req.StagingKey,
		Profile:    req.Profile,
		Status:     domain.RequestPending,
	})
	if err != nil {
		h.Logger.Error("intake create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not store the request."})
		return
	}

	h.Logger.Info("intake request received",
		zap.String("request_id", created.ID),
		zap.String("salon", created.SalonName),
		zap.String("plan", created.Plan),
	)

	c.JSON(http.StatusCreated, gin.H{"id": created.ID, "status": created.Status})
}
