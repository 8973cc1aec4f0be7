package itinerary

import "strings"

// Validate checks that the required fields are present and that the dates form a
// non-empty range. The request is returned unchanged; budget and pace are checked for
// presence only.
func Validate(req TripRequest) (TripRequest, error) {
	required := []string{req.Destination, req.StartDate, req.EndDate, string(req.Budget), string(req.Pace)}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return TripRequest{}, ErrMissingFields
		}
	}
	if _, _, err := DayCount(req.StartDate, req.EndDate); err != nil {
		return TripRequest{}, err
	}
	return req, nil
}
