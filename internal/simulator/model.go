package simulator

import (
	"math"
	"strings"
	"sync"

	"github.com/aiservice/poseul/internal/prediction"
)

// Sample is one parsed /predict request
type Sample struct {
	HRMean   float64
	HRVSDNN  float64
	BMI      float64
	MeanSaO2 float64
	Gender   string
	Age      int
}

// Model is the simulated comfort temperature model
type Model struct {
	mu     sync.RWMutex
	loaded bool
}

// NewModel creates a model in the given load state
func NewModel(loaded bool) *Model {
	return &Model{loaded: loaded}
}

// Loaded reports whether the model is available
func (m *Model) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// SetLoaded changes the load state
func (m *Model) SetLoaded(loaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = loaded
}

// Features lists the model inputs, derived ones included
var Features = []string{
	"bmi", "mean_sa02", "HRV_SDNN", "hrv_hr_ratio", "bmi_hr_interaction",
	"age", "age_bmi_interaction", "age_hrv_ratio", "gender",
}

// Predict returns a comfort temperature in °C. A resting 30 year old
// male with average vitals lands at 35.0.
func (m *Model) Predict(s Sample) float64 {
	hrvHRRatio := 0.0
	if s.HRMean > 0 {
		hrvHRRatio = s.HRVSDNN / s.HRMean
	}
	ageHRVRatio := float64(s.Age) / (s.HRVSDNN + 1)

	t := 35.0
	t += 0.01 * (s.HRMean - 70)
	t += 0.3 * (hrvHRRatio - 0.6)
	t -= 0.02 * (s.BMI - 22)
	t += 0.02 * (s.MeanSaO2 - 97)
	t -= 0.01 * (ageHRVRatio - 30.0/43.0)
	if strings.EqualFold(s.Gender, prediction.GenderFemale) {
		t += 0.1
	}

	t = math.Max(33, math.Min(38, t))
	return math.Round(t*100) / 100
}
