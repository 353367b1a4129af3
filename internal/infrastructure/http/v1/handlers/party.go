package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fakturo/internal/domain/party"
	"fakturo/internal/infrastructure/http/v1/dto"
)

// PartyHTTPHandler is the generic catalog handler specialized for parties.
type PartyHTTPHandler = CatalogHandler[
	*party.Party,
	dto.CreatePartyRequest,
	dto.UpdatePartyRequest,
]

// PartyHandler extends the generic catalog handler with search.
type PartyHandler struct {
	*PartyHTTPHandler
	service *party.Service
}

// NewPartyHandler creates the party handler with DTO mapping configured.
func NewPartyHandler(base *BaseHandler, service *party.Service) *PartyHandler {
	config := CatalogHandlerConfig[
		*party.Party,
		dto.CreatePartyRequest,
		dto.UpdatePartyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "party",

		MapCreateDTO: func(req dto.CreatePartyRequest) *party.Party {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdatePartyRequest, existing *party.Party) *party.Party {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(p *party.Party) any {
			return dto.FromParty(p)
		},
	}

	return &PartyHandler{
		PartyHTTPHandler: NewCatalogHandler(base, config),
		service:          service,
	}
}

// Search handles GET /parties/search?q= - quick lookup by code or name.
func (h *PartyHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	query := c.Query("q")
	limit := h.ParseIntQuery(c, "limit", 20)

	parties, err := h.service.Search(ctx, query, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.PartyResponse, len(parties))
	for i, p := range parties {
		items[i] = dto.FromParty(p)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
