package itinerary

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencePattern matches markdown code fence markers, with or without a json label.
var fencePattern = regexp.MustCompile("```(?:json)?\n?")

// CleanReply removes code fence markers anywhere in the reply and trims whitespace.
func CleanReply(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}

// ParseReply turns a raw model reply into an Itinerary.
//
// Only the top level is checked: the reply must be JSON with a "days" list. Days and
// activities are returned as decoded, missing fields stay empty. Failures are
// *ParseError or *ShapeError.
func ParseReply(raw string) (Itinerary, error) {
	cleaned := CleanReply(raw)

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return Itinerary{}, &ParseError{Raw: raw, Err: err}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return Itinerary{}, &ShapeError{Value: value, Reason: "reply is not an object"}
	}
	days, present := obj["days"]
	if !present {
		return Itinerary{}, &ShapeError{Value: value, Reason: "days is missing"}
	}
	if _, ok := days.([]any); !ok {
		return Itinerary{}, &ShapeError{Value: value, Reason: "days is not a list"}
	}

	var it Itinerary
	if err := json.Unmarshal([]byte(cleaned), &it); err != nil {
		return Itinerary{}, &ShapeError{Value: value, Reason: err.Error()}
	}
	return it, nil
}
