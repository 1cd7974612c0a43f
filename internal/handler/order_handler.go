package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"formulab/internal/domain"
	"formulab/internal/service"
)

// OrderHandler handles production order endpoints.
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if input.CreatedBy == "" {
		if username, ok := c.Get("username"); ok {
			input.CreatedBy, _ = username.(string)
		}
	}

	order, issues, err := h.orderService.Create(c.Request.Context(), &input)
	if err != nil {
		if issues != nil {
			status, code, msg := MapDomainError(err)
			c.JSON(status, APIResponse{Success: false, Data: gin.H{"issues": issues}, Error: &APIError{Code: code, Message: msg}})
			return
		}
		HandleError(c, err)
		return
	}

	RespondCreated(c, gin.H{"order": order, "issues": issues})
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, order)
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	status := domain.OrderStatus(c.Query("status"))

	orders, total, err := h.orderService.List(c.Request.Context(), status, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, orders, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Produce handles POST /api/v1/orders/:id/produce
func (h *OrderHandler) Produce(c *gin.Context) {
	var input service.ProduceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.orderService.MarkProduced(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, order)
}

// Cancel handles POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.orderService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, order)
}

// Document handles GET /api/v1/orders/:id/document
func (h *OrderHandler) Document(c *gin.Context) {
	rc, err := h.orderService.Document(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+c.Param("id")+`.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Headers are already out; nothing left to send but a log line.
		requestID, _ := c.Get("request_id")
		log.Printf("[%v] streaming document for order %s: %v", requestID, c.Param("id"), err)
	}
}
