package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"formulab/internal/csvexport"
	"formulab/internal/domain"
	"formulab/internal/port"
	"formulab/internal/service"
)

// FormulaHandler handles catalog endpoints.
type FormulaHandler struct {
	formulaService service.FormulaService
}

// NewFormulaHandler creates a new FormulaHandler.
func NewFormulaHandler(formulaService service.FormulaService) *FormulaHandler {
	return &FormulaHandler{formulaService: formulaService}
}

// Import handles POST /api/v1/formulas
func (h *FormulaHandler) Import(c *gin.Context) {
	var input service.ImportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.formulaService.Import(c.Request.Context(), &input)
	if err != nil {
		// A blocked or duplicate import still carries the parsed result,
		// so the operator sees what was rejected and why.
		if result != nil && (errors.Is(err, domain.ErrValidationBlocked) || errors.Is(err, domain.ErrDuplicateFormulaKey)) {
			status, code, msg := MapDomainError(err)
			c.JSON(status, APIResponse{Success: false, Data: result, Error: &APIError{Code: code, Message: msg}})
			return
		}
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// Parse handles POST /api/v1/formulas/parse
func (h *FormulaHandler) Parse(c *gin.Context) {
	var input service.ImportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.formulaService.Preview(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Get handles GET /api/v1/formulas/:key
func (h *FormulaHandler) Get(c *gin.Context) {
	formula, err := h.formulaService.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, formula)
}

// List handles GET /api/v1/formulas
func (h *FormulaHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	filter := port.FormulaFilter{
		Brand: domain.Brand(c.Query("brand")),
		Type:  c.Query("type"),
		Color: c.Query("color"),
	}

	formulas, total, err := h.formulaService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, formulas, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Delete handles DELETE /api/v1/formulas/:key
func (h *FormulaHandler) Delete(c *gin.Context) {
	if err := h.formulaService.Delete(c.Request.Context(), c.Param("key")); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": c.Param("key")})
}

// Export handles GET /api/v1/formulas/export
func (h *FormulaHandler) Export(c *gin.Context) {
	filter := port.FormulaFilter{
		Brand: domain.Brand(c.Query("brand")),
		Type:  c.Query("type"),
		Color: c.Query("color"),
	}

	filename := csvexport.BuildFilename("catalog")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}

	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		formulas, total, err := h.formulaService.List(c.Request.Context(), filter, offset, pageSize)
		if err != nil {
			log.Printf("export: listing formulas at offset %d: %v", offset, err)
			return
		}
		if err := w.WriteFormulas(formulas); err != nil {
			return
		}
		if offset+pageSize >= total || len(formulas) == 0 {
			break
		}
	}
	w.Flush()
}

// Scale handles POST /api/v1/formulas/:key/scale
func (h *FormulaHandler) Scale(c *gin.Context) {
	var input service.ScaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	target, err := decimal.NewFromString(input.TargetVolume)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "target_volume is not a number")
		return
	}

	req := domain.ScalingRequest{TargetVolume: target, Unit: domain.Unit(input.Unit)}
	result, err := h.formulaService.Scale(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Validate handles POST /api/v1/formulas/:key/validate
func (h *FormulaHandler) Validate(c *gin.Context) {
	issues, err := h.formulaService.Validate(c.Request.Context(), c.Param("key"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"issues": issues, "has_errors": domain.HasErrors(issues)})
}
