package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"formulab/internal/domain"
	"formulab/internal/port"
)

// MappingHandler handles type-tag mapping endpoints. Mappings drive the key
// derivation for new paint type names.
type MappingHandler struct {
	mappings port.TypeMappingRepository
}

// NewMappingHandler creates a new MappingHandler.
func NewMappingHandler(mappings port.TypeMappingRepository) *MappingHandler {
	return &MappingHandler{mappings: mappings}
}

type upsertMappingInput struct {
	Type string `json:"type" binding:"required"`
	Tag  string `json:"tag" binding:"required"`
}

// List handles GET /api/v1/mappings
func (h *MappingHandler) List(c *gin.Context) {
	all, err := h.mappings.All(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, all)
}

// Upsert handles PUT /api/v1/mappings
func (h *MappingHandler) Upsert(c *gin.Context) {
	var input upsertMappingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	mapping := &domain.TypeMapping{Type: input.Type, Tag: input.Tag}
	if err := h.mappings.Upsert(c.Request.Context(), mapping); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"type": input.Type, "tag": input.Tag})
}
