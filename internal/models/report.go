package models

import "time"

// Report statuses, from calm to urgent.
const (
	ReportStatusOK        = "ok"
	ReportStatusVigilance = "vigilance"
	ReportStatusAlert     = "alert"
)

// Enrichment records the outcome of the optional narration step so a partial
// failure stays observable. It is always populated, whether or not audio was
// obtained.
type Enrichment struct {
	Attempted bool   `json:"attempted"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// Report is deliverable once the core fields (Status, Summary, analyses,
// Recommendations) are set. ScriptText and AudioURL are optional additions
// that may arrive within the enrichment window and never block delivery.
type Report struct {
	ID      int `json:"id"`
	OwnerID int `json:"owner_id"`
	FarmID  int `json:"farm_id"`

	Status          string   `json:"status"` // ok, vigilance, alert
	Summary         string   `json:"summary"`
	WeatherAnalysis string   `json:"weather_analysis"`
	SoilAnalysis    string   `json:"soil_analysis"`
	Recommendations []string `json:"recommendations"`

	ScriptText string `json:"script_text,omitempty"`
	AudioURL   string `json:"audio_url,omitempty"`

	Enrichment Enrichment `json:"enrichment"`

	CreatedAt time.Time `json:"created_at"`
}
