// README: Itinerary handlers (generate and regenerate).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripgen/internal/modules/itinerary"
)

// Planner is the part of service.TripPlanner the handlers need.
type Planner interface {
	Generate(ctx context.Context, req itinerary.TripRequest) (itinerary.Itinerary, error)
	Regenerate(ctx context.Context, sess itinerary.Session) (itinerary.Session, error)
}

type ItineraryHandler struct {
	planner Planner
	timeout time.Duration
}

// NewItineraryHandler bounds each model call by timeout; zero leaves the request
// context as is.
func NewItineraryHandler(planner Planner, timeout time.Duration) *ItineraryHandler {
	return &ItineraryHandler{planner: planner, timeout: timeout}
}

func (h *ItineraryHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// Generate handles POST /api/generate-itinerary.
func (h *ItineraryHandler) Generate(c *gin.Context) {
	var req itinerary.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	it, err := h.planner.Generate(ctx, req)
	if err != nil {
		writePlannerError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, it)
}

// Regenerate handles POST /api/itineraries/regenerate. The body is the stored
// session; its formData is sent again unchanged.
func (h *ItineraryHandler) Regenerate(c *gin.Context) {
	var sess itinerary.Session
	if err := c.ShouldBindJSON(&sess); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	next, err := h.planner.Regenerate(ctx, sess)
	if err != nil {
		writePlannerError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, next)
}

// Options handles GET /api/itineraries/options: the choices the trip form offers.
func (h *ItineraryHandler) Options(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"budgets":    []itinerary.Budget{itinerary.BudgetLow, itinerary.BudgetMedium, itinerary.BudgetHigh},
		"paces":      []itinerary.Pace{itinerary.PaceRelaxed, itinerary.PaceBalanced, itinerary.PaceFast},
		"interests":  itinerary.KnownInterests,
		"sessionKey": itinerary.SessionKey,
	})
}
