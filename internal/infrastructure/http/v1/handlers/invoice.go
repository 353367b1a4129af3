package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/domain/activity"
	"fakturo/internal/domain/invoice"
	"fakturo/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles invoice endpoints. Create and update go through
// the same save flow: the request body carries the full desired state.
type InvoiceHandler struct {
	*BaseHandler
	service    *invoice.Service
	activities activity.Store
}

// NewInvoiceHandler creates a new invoice handler. The activity store is
// optional; without it the activity endpoint returns empty lists.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, activities activity.Store) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
		activities:  activities,
	}
}

// List handles GET /invoices - list with filtering and pagination.
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := invoice.DefaultListFilter()
	filter.ClientQuery = c.Query("client")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-number")

	if raw := c.Query("number"); raw != "" {
		number := int64(h.ParseIntQuery(c, "number", 0))
		if number <= 0 {
			h.Error(c, apperror.NewValidation("invalid number filter").WithDetail("value", raw))
			return
		}
		filter.Number = &number
	}
	if raw := c.Query("clientId"); raw != "" {
		clientID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid clientId filter").WithDetail("value", raw))
			return
		}
		filter.ClientID = &clientID
	}
	if raw := c.Query("reservedFrom"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid reservedFrom filter").WithDetail("value", raw))
			return
		}
		filter.ReservedFrom = &from
	}
	if raw := c.Query("reservedTo"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid reservedTo filter").WithDetail("value", raw))
			return
		}
		filter.ReservedTo = &to
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, inv := range result.Items {
		items[i] = dto.FromInvoice(inv)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /invoices/:id - invoice with items and totals.
func (h *InvoiceHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	inv, err := h.service.GetByID(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(inv))
}

// Create handles POST /invoices - create a new invoice.
func (h *InvoiceHandler) Create(c *gin.Context) {
	h.save(c, nil)
}

// Update handles PUT /invoices/:id - update an existing invoice.
func (h *InvoiceHandler) Update(c *gin.Context) {
	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}
	h.save(c, &invoiceID)
}

func (h *InvoiceHandler) save(c *gin.Context, existingID *id.ID) {
	ctx := c.Request.Context()

	var req dto.SaveInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.CreateOrUpdate(ctx, input, existingID)
	if err != nil {
		h.Error(c, err)
		return
	}

	status := http.StatusOK
	if result.WasCreated {
		status = http.StatusCreated
	}
	c.JSON(status, dto.SaveInvoiceResponse{
		Invoice:    dto.FromInvoice(result.Invoice),
		WasCreated: result.WasCreated,
	})
}

// Delete handles DELETE /invoices/:id - remove invoice and its items.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, invoiceID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// NewNumber handles GET /invoices/new/number - advisory preview of the
// next invoice number. The number is only reserved at save time.
func (h *InvoiceHandler) NewNumber(c *gin.Context) {
	ctx := c.Request.Context()

	number, err := h.service.NewNumber(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NumberPreviewResponse{Number: number})
}

// Activity handles GET /invoices/:id/activity - the invoice's change log.
func (h *InvoiceHandler) Activity(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	items := []*dto.ActivityResponse{}
	if h.activities != nil {
		limit := h.ParseIntQuery(c, "limit", 50)
		entries, err := h.activities.ListForEntity(ctx, "invoice", invoiceID, limit)
		if err != nil {
			h.Error(c, err)
			return
		}
		for _, entry := range entries {
			items = append(items, dto.FromActivity(entry))
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
