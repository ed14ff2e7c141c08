package prediction

import (
	"encoding/json"
	"strings"

	"github.com/aiservice/poseul/internal/codec"
)

// Backend endpoints
const (
	HealthPath    = "/health"
	PredictPath   = "/predict"
	ModelInfoPath = "/model_info"
)

// Gender values accepted by the model
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Input is the physiological sample a prediction is made from
type Input struct {
	HeartRate int
	HRVSDNN   float64
	BMI       float64
	MeanSaO2  float64
	Gender    string
	Age       int
}

// NormalizeGender maps "female" (any case) and "F" to F and everything
// else to M.
func NormalizeGender(g string) string {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "female", "f":
		return GenderFemale
	default:
		return GenderMale
	}
}

// Request converts the input into the wire body for POST /predict
func (in Input) Request() PredictRequest {
	return PredictRequest{
		HRMean:   in.HeartRate,
		HRVSDNN:  in.HRVSDNN,
		BMI:      in.BMI,
		MeanSaO2: in.MeanSaO2,
		Gender:   NormalizeGender(in.Gender),
		Age:      in.Age,
	}
}

// PredictRequest is the body of POST /predict
type PredictRequest struct {
	HRMean   int     `json:"hr_mean"`
	HRVSDNN  float64 `json:"hrv_sdnn"`
	BMI      float64 `json:"bmi"`
	MeanSaO2 float64 `json:"mean_sa02"`
	Gender   string  `json:"gender"`
	Age      int     `json:"age"`
}

// HealthResponse is the reply to GET /health
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded *bool  `json:"model_loaded,omitempty"`
}

// Ready reports whether the server has a model loaded
func (h *HealthResponse) Ready() bool {
	return h != nil && h.ModelLoaded != nil && *h.ModelLoaded
}

// PredictResponse is the reply to POST /predict. The temperature is kept
// raw so that a non-numeric value is not mistaken for zero.
type PredictResponse struct {
	Success              bool            `json:"success"`
	PredictedTemperature json.RawMessage `json:"predicted_temperature,omitempty"`
	TemperatureCategory  *string         `json:"temperature_category,omitempty"`
	InputData            map[string]any  `json:"input_data,omitempty"`
	Error                *string         `json:"error,omitempty"`
}

// RequiredFields implements codec.Validated
func (PredictResponse) RequiredFields() []codec.Field {
	return []codec.Field{{Name: "success", Type: codec.TypeBool}}
}

// errorEnvelope picks the server message out of bodies that carry no
// success flag, like the 400/500 replies of /predict and /model_info.
type errorEnvelope struct {
	Error *string `json:"error,omitempty"`
}

func serverMessage(body []byte) string {
	var e errorEnvelope
	if err := codec.Decode(body, &e); err != nil || e.Error == nil {
		return ""
	}
	return *e.Error
}

// Result is the outcome of one prediction: either a temperature and
// category, or an error message. It is never partially filled.
type Result struct {
	ok          bool
	Temperature float64
	Category    string
	Message     string
}

// Success builds a successful result
func Success(temperature float64, category string) Result {
	return Result{ok: true, Temperature: temperature, Category: category}
}

// Failure builds a failed result
func Failure(message string) Result {
	return Result{Message: message}
}

// OK reports whether the prediction succeeded
func (r Result) OK() bool {
	return r.ok
}

// TrainingSample is one labelled observation for Retrain
type TrainingSample struct {
	Input
	RoomTemperature   float64
	Humidity          float64
	ActualTemperature float64
}
