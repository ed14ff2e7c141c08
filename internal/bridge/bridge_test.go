package bridge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/prediction"
	"github.com/aiservice/poseul/internal/store"
	"github.com/aiservice/poseul/internal/transport"
)

const stateBody = `{"success":true,"device_id":"ac_007","state":{"power_on":false,"target_temperature":24,"temperature_unit":"C","job_mode":"COOL","wind_strength":"AUTO"},"error":null}`

var profile = prediction.Input{HeartRate: 70, HRVSDNN: 42, BMI: 22, MeanSaO2: 97, Gender: "male", Age: 30}

type message struct {
	Facet   string          `json:"facet"`
	Status  store.Status    `json:"status"`
	Loading bool            `json:"loading"`
	Op      string          `json:"op"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func dial(t *testing.T, rec *transport.Recorder) (*websocket.Conn, *Bridge, *store.Store) {
	t.Helper()
	s := store.New(prediction.NewGateway(rec), aircon.NewGateway(rec))
	b := New(s, profile)

	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + Path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, b, s
}

func read(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var m message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

// readUntil reads events until one matches, failing after a bounded number
func readUntil(t *testing.T, conn *websocket.Conn, match func(message) bool) message {
	t.Helper()
	for i := 0; i < 20; i++ {
		if m := read(t, conn); match(m) {
			return m
		}
	}
	require.FailNow(t, "expected event never arrived")
	return message{}
}

func TestInitialSnapshots(t *testing.T) {
	conn, _, _ := dial(t, transport.NewRecorder())

	first := read(t, conn)
	assert.Equal(t, store.FacetDevice, first.Facet)
	assert.Equal(t, store.StatusIdle, first.Status)
	assert.Equal(t, "null", string(first.Data))

	second := read(t, conn)
	assert.Equal(t, store.FacetPrediction, second.Facet)
	assert.Equal(t, store.StatusIdle, second.Status)
}

func TestRefreshIntent(t *testing.T) {
	rec := transport.NewRecorder().Respond("GET", aircon.StatePath, 200, stateBody)
	conn, _, _ := dial(t, rec)
	read(t, conn)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(Intent{Op: OpRefresh}))

	loading := read(t, conn)
	assert.Equal(t, store.FacetDevice, loading.Facet)
	assert.Equal(t, store.StatusLoading, loading.Status)
	assert.True(t, loading.Loading)

	ready := read(t, conn)
	assert.Equal(t, store.StatusReady, ready.Status)
	assert.False(t, ready.Loading)

	var data map[string]any
	require.NoError(t, json.Unmarshal(ready.Data, &data))
	assert.Equal(t, "ac_007", data["device_id"])
	assert.Equal(t, "COOL", data["job_mode"])
	assert.Equal(t, false, data["power_on"])
}

func TestPredictIntent(t *testing.T) {
	rec := transport.NewRecorder().
		Respond("GET", prediction.HealthPath, 200, `{"status":"healthy","model_loaded":true}`).
		Respond("POST", prediction.PredictPath, 200, `{"success":true,"predicted_temperature":34.1}`)
	conn, _, _ := dial(t, rec)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"op":    "predict",
		"input": map[string]any{"hr_mean": 88, "hrv_sdnn": 30, "bmi": 25, "mean_sa02": 96, "gender": "F", "age": 41},
	}))

	ready := readUntil(t, conn, func(m message) bool {
		return m.Facet == store.FacetPrediction && m.Status == store.StatusReady
	})
	var data PredictionData
	require.NoError(t, json.Unmarshal(ready.Data, &data))
	assert.True(t, data.Success)
	assert.Equal(t, 34.1, data.Temperature)
	assert.Equal(t, prediction.CategoryCold, data.Category)

	var sent prediction.PredictRequest
	for _, c := range rec.Calls() {
		if c.Path == prediction.PredictPath {
			require.NoError(t, json.Unmarshal(c.Body, &sent))
		}
	}
	assert.Equal(t, 88, sent.HRMean)
	assert.Equal(t, prediction.GenderFemale, sent.Gender)
}

func TestPredictIntentFailure(t *testing.T) {
	rec := transport.NewRecorder().Fail("GET", prediction.HealthPath, transport.KindConnectionRefused)
	conn, _, _ := dial(t, rec)

	require.NoError(t, conn.WriteJSON(Intent{Op: OpPredict}))

	failed := readUntil(t, conn, func(m message) bool {
		return m.Facet == store.FacetPrediction && m.Status == store.StatusFailed
	})
	assert.Equal(t, prediction.MsgServerUnreachable, failed.Error)
	assert.Equal(t, 0, rec.CallCount("POST", prediction.PredictPath))
}

func TestControlIntents(t *testing.T) {
	on := true
	temp := 22.5

	tests := []struct {
		name   string
		intent Intent
		want   string
	}{
		{"temperature", Intent{Op: OpSetTemperature, Temperature: &temp}, `{"action":"set_temperature","target_temperature":22.5,"unit":"C"}`},
		{"mode alias", Intent{Op: OpSetMode, Mode: "제습"}, `{"action":"set_mode","mode":"AIR_DRY"}`},
		{"fan", Intent{Op: OpSetFanSpeed, Speed: "medium"}, `{"action":"set_wind_strength","strength":"MID"}`},
		{"power", Intent{Op: OpSetPower, On: &on}, `{"action":"set_power","power_on":true}`},
		{"toggle", Intent{Op: OpTogglePower}, `{"action":"set_power","power_on":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := transport.NewRecorder().
				Respond("GET", aircon.StatePath, 200, stateBody).
				Respond("POST", aircon.ControlPath, 200, `{"success":true}`)
			conn, _, s := dial(t, rec)

			require.NoError(t, conn.WriteJSON(tt.intent))
			readUntil(t, conn, func(m message) bool {
				return m.Facet == store.FacetDevice && m.Status == store.StatusReady
			})
			s.Wait()

			var body []byte
			for _, c := range rec.Calls() {
				if c.Path == aircon.ControlPath {
					body = c.Body
				}
			}
			assert.JSONEq(t, tt.want, string(body))
		})
	}
}

func TestRejectedIntents(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"unknown op", `{"op":"reboot"}`, `unknown op "reboot"`},
		{"missing temperature", `{"op":"set_temperature"}`, "temperature is required"},
		{"bad mode", `{"op":"set_mode","mode":"HEAT"}`, `invalid mode "HEAT"`},
		{"missing power flag", `{"op":"set_power"}`, "on is required"},
		{"not json", `predict please`, "invalid intent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := transport.NewRecorder()
			conn, _, _ := dial(t, rec)
			read(t, conn)
			read(t, conn)

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)))

			m := read(t, conn)
			assert.Empty(t, m.Facet)
			assert.Contains(t, m.Error, tt.want)
			assert.Empty(t, rec.Calls())
		})
	}
}

func TestDisconnectUnsubscribes(t *testing.T) {
	rec := transport.NewRecorder().Respond("GET", aircon.StatePath, 200, stateBody)
	conn, b, s := dial(t, rec)
	read(t, conn)
	read(t, conn)

	assert.Eventually(t, func() bool { return b.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	assert.Eventually(t, func() bool { return b.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	s.Refresh()
	s.Wait()
	assert.Equal(t, store.StatusReady, s.Device().Snapshot().Status)
}

// drain reads events until the connection stays quiet and returns the
// last one seen for each facet.
func drain(t *testing.T, conn *websocket.Conn) map[string]message {
	t.Helper()
	last := make(map[string]message)
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
		var m message
		if err := conn.ReadJSON(&m); err != nil {
			return last
		}
		if m.Facet != "" {
			last[m.Facet] = m
		}
	}
}

func TestTransitionDuringConnect(t *testing.T) {
	for i := 0; i < 20; i++ {
		rec := transport.NewRecorder().
			Respond("GET", aircon.StatePath, 200, stateBody).
			Respond("GET", prediction.HealthPath, 200, `{"status":"healthy","model_loaded":true}`).
			Respond("POST", prediction.PredictPath, 200, `{"success":true,"predicted_temperature":35.0}`)
		s := store.New(prediction.NewGateway(rec), aircon.NewGateway(rec))
		b := New(s, profile)

		srv := httptest.NewServer(b.Handler())
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + Path

		s.Refresh()
		s.Predict(profile)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		s.Wait()

		last := drain(t, conn)
		require.Contains(t, last, store.FacetDevice)
		require.Contains(t, last, store.FacetPrediction)
		assert.Equal(t, s.Device().Snapshot().Status, last[store.FacetDevice].Status)
		assert.Equal(t, s.Prediction().Snapshot().Status, last[store.FacetPrediction].Status)
		assert.False(t, last[store.FacetDevice].Loading)

		_ = conn.Close()
		srv.Close()
	}
}

func TestOverlappingRefreshesEndOnFacetState(t *testing.T) {
	rec := transport.NewRecorder().Respond("GET", aircon.StatePath, 200, stateBody)
	conn, _, s := dial(t, rec)
	read(t, conn)
	read(t, conn)

	for i := 0; i < 5; i++ {
		require.NoError(t, conn.WriteJSON(Intent{Op: OpRefresh}))
	}
	assert.Eventually(t, func() bool { return rec.CallCount("GET", aircon.StatePath) == 5 }, 2*time.Second, 10*time.Millisecond)
	s.Wait()

	last := drain(t, conn)
	assert.Equal(t, store.StatusReady, last[store.FacetDevice].Status)
	assert.Equal(t, s.Device().Snapshot().Status, last[store.FacetDevice].Status)
}
