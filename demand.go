package skeptic

import (
	"fmt"
	"strings"
)

// ──────────────────────────────────────────────
// DemandFacts — structured extraction from a demand payload
// ──────────────────────────────────────────────

// DemandFacts holds the structured fields parsed from a demand evidence
// payload. Fields fill opportunistically and are never overwritten with
// emptier data.
type DemandFacts struct {
	Position          string `json:"position,omitempty"`
	Salary            string `json:"salary,omitempty"`
	AccommodationCost string `json:"accommodation_cost,omitempty"`
	Hours             string `json:"hours,omitempty"`
	Schedule          string `json:"schedule,omitempty"`
	Location          string `json:"location,omitempty"`
	Period            string `json:"period,omitempty"`
}

// demandFieldAliases maps payload key spellings to DemandFacts fields.
var demandFieldAliases = map[string]string{
	"position": "position", "должность": "position", "vacancy": "position",
	"salary": "salary", "зарплата": "salary", "оклад": "salary",
	"accommodation": "accommodation", "accommodation_cost": "accommodation",
	"housing": "accommodation", "жилье": "accommodation", "проживание": "accommodation",
	"hours": "hours", "часы": "hours", "working_hours": "hours",
	"schedule": "schedule", "график": "schedule",
	"location": "location", "город": "location", "city": "location",
	"period": "period", "срок": "period", "duration": "period",
}

// ParseDemandFacts extracts facts from an evidence details payload.
// Unknown keys are ignored; values are stringified as-is.
func ParseDemandFacts(details map[string]interface{}) DemandFacts {
	var f DemandFacts
	for rawKey, rawVal := range details {
		field, ok := demandFieldAliases[strings.ToLower(strings.TrimSpace(rawKey))]
		if !ok {
			continue
		}
		val := strings.TrimSpace(fmt.Sprint(rawVal))
		if val == "" || val == "<nil>" {
			continue
		}
		switch field {
		case "position":
			f.Position = val
		case "salary":
			f.Salary = val
		case "accommodation":
			f.AccommodationCost = val
		case "hours":
			f.Hours = val
		case "schedule":
			f.Schedule = val
		case "location":
			f.Location = val
		case "period":
			f.Period = val
		}
	}
	return f
}

// Merge folds incoming facts into f, keeping existing non-empty fields.
func (f *DemandFacts) Merge(in DemandFacts) {
	if f.Position == "" {
		f.Position = in.Position
	}
	if f.Salary == "" {
		f.Salary = in.Salary
	}
	if f.AccommodationCost == "" {
		f.AccommodationCost = in.AccommodationCost
	}
	if f.Hours == "" {
		f.Hours = in.Hours
	}
	if f.Schedule == "" {
		f.Schedule = in.Schedule
	}
	if f.Location == "" {
		f.Location = in.Location
	}
	if f.Period == "" {
		f.Period = in.Period
	}
}

// Empty reports whether no field is filled.
func (f DemandFacts) Empty() bool {
	return f == DemandFacts{}
}
