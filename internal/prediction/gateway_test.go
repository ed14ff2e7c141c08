package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiservice/poseul/internal/transport"
)

const healthyBody = `{"status":"ok","model_loaded":true}`

var sampleInput = Input{HeartRate: 72, HRVSDNN: 45.3, BMI: 22.1, MeanSaO2: 97.5, Gender: "female", Age: 29}

func TestPredict_Success(t *testing.T) {
	rec := transport.NewRecorder().
		Respond(http.MethodGet, HealthPath, 200, healthyBody).
		Respond(http.MethodPost, PredictPath, 200, `{"success":true,"predicted_temperature":35.2,"temperature_category":"normal"}`)

	result := NewGateway(rec).Predict(context.Background(), sampleInput)

	require.True(t, result.OK(), result.Message)
	assert.Equal(t, 35.2, result.Temperature)
	assert.Equal(t, "normal", result.Category)
	assert.Empty(t, result.Message)
}

func TestPredict_HealthCheckShortCircuits(t *testing.T) {
	tests := []struct {
		name    string
		rec     *transport.Recorder
		wantMsg string
	}{
		{
			name:    "connection refused",
			rec:     transport.NewRecorder().Fail(http.MethodGet, HealthPath, transport.KindConnectionRefused),
			wantMsg: MsgServerUnreachable,
		},
		{
			name:    "timeout",
			rec:     transport.NewRecorder().Fail(http.MethodGet, HealthPath, transport.KindTimeout),
			wantMsg: MsgServerUnreachable,
		},
		{
			name:    "model not loaded",
			rec:     transport.NewRecorder().Respond(http.MethodGet, HealthPath, 200, `{"status":"healthy","model_loaded":false}`),
			wantMsg: MsgModelNotReady,
		},
		{
			name:    "model_loaded missing",
			rec:     transport.NewRecorder().Respond(http.MethodGet, HealthPath, 200, `{"status":"healthy"}`),
			wantMsg: MsgModelNotReady,
		},
		{
			name:    "empty 503",
			rec:     transport.NewRecorder().Respond(http.MethodGet, HealthPath, 503, ``),
			wantMsg: MsgModelNotReady,
		},
		{
			name:    "garbage",
			rec:     transport.NewRecorder().Respond(http.MethodGet, HealthPath, 200, `<html>`),
			wantMsg: MsgModelNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rec.Respond(http.MethodPost, PredictPath, 200, `{"success":true,"predicted_temperature":35.0}`)

			result := NewGateway(tt.rec).Predict(context.Background(), sampleInput)
			require.False(t, result.OK())
			assert.Equal(t, tt.wantMsg, result.Message)
			assert.Zero(t, tt.rec.CallCount(http.MethodPost, PredictPath), "predict endpoint must not be called")
		})
	}
}

func TestPredict_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		fail    bool
		wantMsg string
	}{
		{name: "server error text", status: 200, body: `{"success":false,"error":"sensor data out of range"}`, wantMsg: "sensor data out of range"},
		{name: "bare error envelope 400", status: 400, body: `{"error":"missing parameter: age"}`, wantMsg: "missing parameter: age"},
		{name: "bare error envelope 500", status: 500, body: `{"error":"model not loaded"}`, wantMsg: "model not loaded"},
		{name: "success false without text", status: 200, body: `{"success":false}`, wantMsg: "prediction failed"},
		{name: "empty object", status: 200, body: `{}`, wantMsg: `invalid server response: Missing Required Field "success"`},
		{name: "success without temperature", status: 200, body: `{"success":true,"temperature_category":"hot"}`, wantMsg: "invalid server response: no predicted_temperature"},
		{name: "temperature as string", status: 200, body: `{"success":true,"predicted_temperature":"35.1"}`, wantMsg: "invalid server response: no predicted_temperature"},
		{name: "empty 502", status: 502, body: ``, wantMsg: "HTTP 502 Bad Gateway"},
		{name: "timeout", fail: true, wantMsg: "server not responding (timeout)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := transport.NewRecorder().Respond(http.MethodGet, HealthPath, 200, healthyBody)
			if tt.fail {
				rec.Fail(http.MethodPost, PredictPath, transport.KindTimeout)
			} else {
				rec.Respond(http.MethodPost, PredictPath, tt.status, tt.body)
			}

			result := NewGateway(rec).Predict(context.Background(), sampleInput)
			require.False(t, result.OK(), "%+v", result)
			assert.Equal(t, tt.wantMsg, result.Message)
			assert.Equal(t, 1, rec.CallCount(http.MethodPost, PredictPath))
		})
	}
}

func TestPredict_CategoryFallback(t *testing.T) {
	rec := transport.NewRecorder().
		Respond(http.MethodGet, HealthPath, 200, healthyBody).
		Respond(http.MethodPost, PredictPath, 200, `{"success":true,"predicted_temperature":36.1,"temperature_category":null}`)

	result := NewGateway(rec).Predict(context.Background(), sampleInput)
	require.True(t, result.OK(), result.Message)
	assert.Equal(t, CategoryHot, result.Category)
}

func TestPredict_RequestBody(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case HealthPath:
			w.Write([]byte(healthyBody))
		case PredictPath:
			assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
			json.NewDecoder(r.Body).Decode(&got)
			w.Write([]byte(`{"success":true,"predicted_temperature":34.9,"temperature_category":"comfortable"}`))
		default:
			assert.Fail(t, "unexpected path", r.URL.Path)
		}
	}))
	defer server.Close()

	result := NewGateway(transport.NewClient(server.URL)).Predict(context.Background(), sampleInput)
	require.True(t, result.OK(), result.Message)

	want := map[string]any{
		"hr_mean":   float64(72),
		"hrv_sdnn":  45.3,
		"bmi":       22.1,
		"mean_sa02": 97.5,
		"gender":    "F",
		"age":       float64(29),
	}
	assert.Equal(t, want, got)
}

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"female", "F"},
		{"FEMALE", "F"},
		{"Female", "F"},
		{" female ", "F"},
		{"F", "F"},
		{"f", "F"},
		{"male", "M"},
		{"M", "M"},
		{"", "M"},
		{"woman", "M"},
		{"여성", "M"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeGender(tt.input), "NormalizeGender(%q)", tt.input)
	}
}

func TestClassifyTemperature(t *testing.T) {
	tests := []struct {
		temp float64
		want string
	}{
		{33.0, CategoryCold},
		{34.49, CategoryCold},
		{34.5, CategoryComfortable},
		{35.0, CategoryComfortable},
		{35.6, CategoryComfortable},
		{35.61, CategoryHot},
		{37.0, CategoryHot},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyTemperature(tt.temp), "ClassifyTemperature(%v)", tt.temp)
	}
}

func TestModelInfo(t *testing.T) {
	t.Run("returns raw body", func(t *testing.T) {
		info := `{"model_type":"ensemble","model_loaded":true}`
		rec := transport.NewRecorder().Respond(http.MethodGet, ModelInfoPath, 200, info)

		got, err := NewGateway(rec).ModelInfo(context.Background())
		require.NoError(t, err)
		assert.Equal(t, info, got)
	})

	t.Run("server error", func(t *testing.T) {
		rec := transport.NewRecorder().Respond(http.MethodGet, ModelInfoPath, 500, `{"error":"model not loaded"}`)

		_, err := NewGateway(rec).ModelInfo(context.Background())
		assert.EqualError(t, err, "model not loaded")
	})

	t.Run("server error without text", func(t *testing.T) {
		rec := transport.NewRecorder().Respond(http.MethodGet, ModelInfoPath, 404, ``)

		_, err := NewGateway(rec).ModelInfo(context.Background())
		assert.EqualError(t, err, "model info unavailable (HTTP 404)")
	})
}

func TestLoadModelAndRetrain(t *testing.T) {
	ready := transport.NewRecorder().Respond(http.MethodGet, HealthPath, 200, healthyBody)
	assert.True(t, NewGateway(ready).LoadModel(context.Background()))

	notReady := transport.NewRecorder().Respond(http.MethodGet, HealthPath, 200, `{"status":"healthy","model_loaded":false}`)
	assert.False(t, NewGateway(notReady).LoadModel(context.Background()))

	rec := transport.NewRecorder()
	gw := NewGateway(rec)
	assert.True(t, gw.Retrain(context.Background(), []TrainingSample{{Input: sampleInput, ActualTemperature: 35.1}}))
	assert.Empty(t, rec.Calls(), "Retrain() should not touch the network")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, gw.Retrain(ctx, nil), "canceled context")
}
