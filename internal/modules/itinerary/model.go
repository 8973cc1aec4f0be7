// README: Trip request, itinerary and session hand-off types.
package itinerary

import "tripgen/internal/types"

type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

type Pace string

const (
	PaceRelaxed  Pace = "relaxed"
	PaceBalanced Pace = "balanced"
	PaceFast     Pace = "fast"
)

// KnownInterests are the interest tags offered by the trip form.
// Requests may carry any other free-form tag as well.
var KnownInterests = []string{"food", "history", "nightlife", "adventure", "shopping", "outdoors"}

// SessionKey is the client-side storage slot the results view reads the Session from.
const SessionKey = "travelItinerary"

// TripRequest is one trip submission. Dates are kept as submitted; the validator
// checks that they parse and form a non-empty range.
type TripRequest struct {
	Destination string   `json:"destination" yaml:"destination"`
	StartDate   string   `json:"startDate" yaml:"startDate"`
	EndDate     string   `json:"endDate" yaml:"endDate"`
	Budget      Budget   `json:"budget" yaml:"budget"`
	Pace        Pace     `json:"pace" yaml:"pace"`
	Interests   []string `json:"interests" yaml:"interests"`
}

// DateSequence holds one calendar date per itinerary day, in order.
type DateSequence []types.Date

// Strings renders the sequence as ISO dates.
func (s DateSequence) Strings() []string {
	out := make([]string, len(s))
	for i, d := range s {
		out[i] = d.String()
	}
	return out
}

type Activity struct {
	Time        string `json:"time" yaml:"time"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

type Day struct {
	Date       string     `json:"date" yaml:"date"`
	Activities []Activity `json:"activities" yaml:"activities"`
}

type Itinerary struct {
	Days []Day `json:"days" yaml:"days"`
}

// Session bundles a generated itinerary with the request that produced it.
// The results view keeps it; regenerate sends FormData back unchanged.
type Session struct {
	Itinerary Itinerary   `json:"itinerary" yaml:"itinerary"`
	FormData  TripRequest `json:"formData" yaml:"formData"`
}
