package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"formulab/internal/domain"
	"formulab/internal/service"
)

// RuleHandler handles validation rule endpoints.
type RuleHandler struct {
	ruleService service.RuleService
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService service.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

// Create handles POST /api/v1/rules
func (h *RuleHandler) Create(c *gin.Context) {
	var input service.CreateRuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rule, err := h.ruleService.Create(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, rule)
}

// List handles GET /api/v1/rules
func (h *RuleHandler) List(c *gin.Context) {
	brand := domain.Brand(c.Query("brand"))
	rules, err := h.ruleService.ListActive(c.Request.Context(), brand, c.Query("type"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rules)
}

// Get handles GET /api/v1/rules/:id
func (h *RuleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid rule id")
		return
	}

	rule, err := h.ruleService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rule)
}

// Update handles PATCH /api/v1/rules/:id
func (h *RuleHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid rule id")
		return
	}

	var input service.UpdateRuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rule, err := h.ruleService.Update(c.Request.Context(), id, &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rule)
}

// Delete handles DELETE /api/v1/rules/:id
func (h *RuleHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid rule id")
		return
	}

	if err := h.ruleService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

// BuiltinKeys handles GET /api/v1/rules/builtin
func (h *RuleHandler) BuiltinKeys(c *gin.Context) {
	RespondOK(c, h.ruleService.BuiltinKeys())
}
