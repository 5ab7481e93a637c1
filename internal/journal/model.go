package journal

import (
	"time"
)

// Run is one execution of a sandbox scenario.
type Run struct {
	ID        int64     `json:"ID"`                        // Unique identifier for the run
	UID       string    `json:"UID"`                       // Externally visible run identifier
	StartTime time.Time `json:"startTime"`                 // When the run began
	Scenario  *string   `json:"scenario,string,omitempty"` // Optional scenario in JSON format
}

// Detection is the S/N peak of one processing stage of a run.
type Detection struct {
	RunID     int64   `json:"runID"`
	Stage     string  `json:"stage"`     // Processing stage the series was computed on
	DM        float64 `json:"dm"`        // Dispersion measure the stage was dedispersed at, 0 otherwise
	PeakIndex int     `json:"peakIndex"` // Sample index of the maximum
	PeakTime  float64 `json:"peakTime"`  // Observation time of the maximum in seconds
	PeakSNR   float64 `json:"peakSNR"`   // S/N at the maximum
}
