package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"tripgen/internal/modules/itinerary"
)

const (
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatMarkdown = "markdown"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML, formatMarkdown:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want json, yaml or markdown)", format)
}

// writeItinerary prints it in format. json and yaml emit the session value a client
// would store; markdown renders the itinerary for a terminal.
func writeItinerary(w io.Writer, format string, req itinerary.TripRequest, it itinerary.Itinerary) error {
	sess := itinerary.Session{Itinerary: it, FormData: req}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sess); err != nil {
			return err
		}
		return enc.Close()
	default:
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			return err
		}
		out, err := r.Render(itineraryMarkdown(req, it))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
}

func itineraryMarkdown(req itinerary.TripRequest, it itinerary.Itinerary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", req.Destination)
	fmt.Fprintf(&b, "%s to %s · %s budget · %s pace\n", req.StartDate, req.EndDate, req.Budget, req.Pace)
	if len(req.Interests) > 0 {
		fmt.Fprintf(&b, "\nInterests: %s\n", strings.Join(req.Interests, ", "))
	}
	for i, day := range it.Days {
		fmt.Fprintf(&b, "\n## Day %d", i+1)
		if day.Date != "" {
			fmt.Fprintf(&b, " (%s)", day.Date)
		}
		b.WriteString("\n\n")
		if len(day.Activities) == 0 {
			b.WriteString("_No activities planned._\n")
			continue
		}
		for _, a := range day.Activities {
			fmt.Fprintf(&b, "- **%s** %s", a.Time, a.Title)
			if a.Description != "" {
				fmt.Fprintf(&b, ": %s", a.Description)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
