package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tripgen/internal/modules/itinerary"
)

type requestFlags struct {
	file        string
	destination string
	start       string
	end         string
	budget      string
	pace        string
	interests   []string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tripgen",
		Short:        "Generate day-by-day travel itineraries with Gemini",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newPlanCmd(), newPromptCmd(), newSmokeCmd())
	return root
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "read the trip request from a YAML or JSON file")
	fl.StringVarP(&f.destination, "destination", "d", "", "trip destination")
	fl.StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	fl.StringVar(&f.end, "end", "", "end date (YYYY-MM-DD)")
	fl.StringVar(&f.budget, "budget", string(itinerary.BudgetMedium), "budget: low, medium or high")
	fl.StringVar(&f.pace, "pace", string(itinerary.PaceBalanced), "pace: relaxed, balanced or fast")
	fl.StringSliceVar(&f.interests, "interests", nil, "comma separated interests (e.g. "+strings.Join(itinerary.KnownInterests[:3], ",")+")")
}

// request builds the trip request. Flags explicitly set on the command line override
// values read from --file.
func (f *requestFlags) request(cmd *cobra.Command) (itinerary.TripRequest, error) {
	var req itinerary.TripRequest
	if f.file != "" {
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return req, err
		}
		if err := yaml.Unmarshal(raw, &req); err != nil {
			return req, fmt.Errorf("parse %s: %w", f.file, err)
		}
	}

	fl := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if f.file == "" || fl.Changed(name) {
			*dst = v
		}
	}
	set("destination", &req.Destination, f.destination)
	set("start", &req.StartDate, f.start)
	set("end", &req.EndDate, f.end)

	budget, pace := string(req.Budget), string(req.Pace)
	set("budget", &budget, f.budget)
	set("pace", &pace, f.pace)
	req.Budget, req.Pace = itinerary.Budget(budget), itinerary.Pace(pace)

	if f.file == "" || fl.Changed("interests") {
		req.Interests = f.interests
	}
	return req, nil
}
