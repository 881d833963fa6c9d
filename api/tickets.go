package api

import (
	"net/http"

	"github.com/Domenick1991/flightledger/internal/auth"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

type buyTicketRequest struct {
	Passenger string `json:"passenger"`
	Details   string `json:"details"`
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

// Register mounts ticket routes on the versioned root group.
func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/flights/:id/tickets", h.buy)
	router.DELETE("/flights/:id/tickets", h.cancel)
	router.GET("/passengers/:address/flights", h.manifest)
}

func (h *TicketHandler) buy(c *gin.Context) {
	id, err := domain.ParseFlightID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}
	var req buyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase, err := h.service.Buy(c.Request.Context(), tickets.BuyTicketInput{
		FlightID:  id,
		Passenger: domain.Address(req.Passenger),
		Details:   req.Details,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *TicketHandler) cancel(c *gin.Context) {
	id, err := domain.ParseFlightID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}

	// The passenger defaults to the authenticated caller; a query param
	// keeps the argument explicit for clients that want it.
	passenger := domain.Address(c.Query("passenger"))
	if passenger == "" {
		caller, ok := auth.CallerFrom(c.Request.Context())
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrUnauthorized.Error()})
			return
		}
		passenger = caller
	}

	refund, err := h.service.Cancel(c.Request.Context(), id, passenger)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, refund)
}

func (h *TicketHandler) manifest(c *gin.Context) {
	passenger := domain.Address(c.Param("address"))
	result, err := h.service.FlightsByPassenger(c.Request.Context(), passenger)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
