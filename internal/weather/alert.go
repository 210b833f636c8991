package weather

import (
	"encoding/json"
	"math"
	"strings"
)

// AlertState classifies current conditions.
type AlertState int

const (
	AlertNone AlertState = iota
	AlertExtremeTemperature
	AlertExtremeCondition
)

const (
	hotThreshold  = 30.0
	coldThreshold = -10.0
)

// severeKeywords are matched against the lower-cased description, in Polish and English.
var severeKeywords = []string{"burza", "storm", "wiatr", "wind"}

// Evaluate classifies an observation. Temperature extremes take precedence
// over severe-condition keywords.
func Evaluate(obs CanonicalObservation) AlertState {
	temp := obs.Main.Temp
	if !math.IsNaN(temp) && !math.IsInf(temp, 0) && (temp > hotThreshold || temp < coldThreshold) {
		return AlertExtremeTemperature
	}
	desc := strings.ToLower(obs.Condition().Description)
	for _, kw := range severeKeywords {
		if strings.Contains(desc, kw) {
			return AlertExtremeCondition
		}
	}
	return AlertNone
}

func (a AlertState) String() string {
	switch a {
	case AlertExtremeTemperature:
		return "extreme_temperature"
	case AlertExtremeCondition:
		return "extreme_condition"
	default:
		return "none"
	}
}

// Message is the warning shown to the user, empty for AlertNone.
func (a AlertState) Message() string {
	switch a {
	case AlertExtremeTemperature:
		return "Uwaga! Ekstremalna temperatura!"
	case AlertExtremeCondition:
		return "Uwaga! Ekstremalne warunki pogodowe!"
	default:
		return ""
	}
}

func (a AlertState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		State   string `json:"state"`
		Message string `json:"message,omitempty"`
	}{a.String(), a.Message()})
}
