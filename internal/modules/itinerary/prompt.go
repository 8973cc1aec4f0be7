package itinerary

import (
	"fmt"
	"strings"
)

// budgetStyles and paceCounts are rendered in this fixed order so the prompt text is
// reproducible byte for byte.
var budgetStyles = []struct {
	budget Budget
	style  string
}{
	{BudgetLow, "Free/cheap activities, local food, public transport"},
	{BudgetMedium, "Mix of paid attractions, good restaurants, some tours"},
	{BudgetHigh, "Premium experiences, fine dining, private tours"},
}

var paceCounts = []struct {
	pace  Pace
	count string
}{
	{PaceRelaxed, "2-3 activities per day"},
	{PaceBalanced, "4-5 activities per day"},
	{PaceFast, "6+ activities per day"},
}

// BuildPrompt renders the model instruction for a validated request and its dates.
// The output depends only on its arguments.
func BuildPrompt(req TripRequest, dates DateSequence) string {
	n := len(dates)
	anchor := ""
	if n > 0 {
		anchor = dates[0].String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional travel planner. Create a detailed %d-day itinerary for %s.\n\n", n, req.Destination)

	b.WriteString("Trip Details:\n")
	fmt.Fprintf(&b, "- Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "- Dates: %s to %s (%d days)\n", req.StartDate, req.EndDate, n)
	fmt.Fprintf(&b, "- Budget: %s\n", req.Budget)
	fmt.Fprintf(&b, "- Pace: %s\n", req.Pace)
	fmt.Fprintf(&b, "- Interests: %s\n\n", strings.Join(req.Interests, ", "))

	b.WriteString("Create activities appropriate for the budget level:\n")
	for _, bs := range budgetStyles {
		fmt.Fprintf(&b, "- %s budget: %s\n", capitalize(string(bs.budget)), bs.style)
	}

	b.WriteString("\nActivity count per day based on pace:\n")
	for _, pc := range paceCounts {
		fmt.Fprintf(&b, "- %s: %s\n", capitalize(string(pc.pace)), pc.count)
	}

	b.WriteString("\nCRITICAL: You MUST respond with ONLY valid JSON in this exact format (no other text):\n")
	fmt.Fprintf(&b, `{
  "days": [
    {
      "date": "%s",
      "activities": [
        {
          "time": "09:00",
          "title": "Activity Name",
          "description": "Detailed description of the activity"
        }
      ]
    }
  ]
}
`, anchor)

	fmt.Fprintf(&b, "\nInclude realistic times (use 24-hour format like \"09:00\", \"14:30\"). "+
		"Make sure each day has activities from morning to evening. "+
		"Include specific locations, restaurants, and attractions in %s.", req.Destination)

	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
