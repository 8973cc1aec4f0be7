// README: Destination autocomplete handler.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripgen/internal/maps"
)

type Suggester interface {
	Suggest(ctx context.Context, query string) ([]maps.Suggestion, error)
}

type PlacesHandler struct {
	places Suggester
}

func NewPlacesHandler(places Suggester) *PlacesHandler {
	return &PlacesHandler{places: places}
}

// Suggest handles GET /api/destinations/suggest?q=.
func (h *PlacesHandler) Suggest(c *gin.Context) {
	out, err := h.places.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, maps.ErrQueryTooShort) {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		writeError(c, http.StatusBadGateway, "destination lookup failed")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"suggestions": out})
}
