// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripgen/internal/ai"
	"tripgen/internal/modules/itinerary"
)

type errorResponse struct {
	Error      string `json:"error"`
	Status     int    `json:"status,omitempty"`
	Details    any    `json:"details,omitempty"`
	ParseError string `json:"parseError,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writePlannerError maps pipeline failures to the client-facing error payloads.
func writePlannerError(c *gin.Context, err error) {
	var (
		vErr *itinerary.ValidationError
		gErr *ai.GatewayError
		pErr *itinerary.ParseError
		sErr *itinerary.ShapeError
	)
	switch {
	case errors.Is(err, itinerary.ErrMissingFields):
		writeError(c, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, itinerary.ErrInvalidDateRange):
		writeError(c, http.StatusBadRequest, "Invalid date range")
	case errors.As(err, &vErr):
		writeError(c, http.StatusBadRequest, vErr.Message)
	case errors.As(err, &gErr) && gErr.NoReply():
		writeJSON(c, http.StatusInternalServerError, errorResponse{
			Error:   "No response from AI",
			Details: gErr.Body,
		})
	case errors.As(err, &gErr):
		details := gErr.Body
		if details == "" && gErr.Err != nil {
			details = gErr.Err.Error()
		}
		writeJSON(c, http.StatusServiceUnavailable, errorResponse{
			Error:   "AI service unavailable",
			Status:  gErr.Status,
			Details: details,
		})
	case errors.As(err, &pErr):
		writeJSON(c, http.StatusInternalServerError, errorResponse{
			Error:      "Invalid AI response format",
			Details:    pErr.Raw,
			ParseError: pErr.Err.Error(),
		})
	case errors.As(err, &sErr):
		writeJSON(c, http.StatusInternalServerError, errorResponse{
			Error:   "Invalid itinerary structure",
			Details: sErr.Value,
		})
	default:
		writeJSON(c, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
	}
}
