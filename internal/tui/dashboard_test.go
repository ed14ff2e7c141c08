package tui

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/discovery"
	"github.com/aiservice/poseul/internal/prediction"
	"github.com/aiservice/poseul/internal/store"
	"github.com/aiservice/poseul/internal/transport"
)

const stateBody = `{"success":true,"device_id":"ac_001","state":{"power_on":true,"current_temperature":26.5,"target_temperature":24,"temperature_unit":"C","job_mode":"COOL","wind_strength":"AUTO"},"error":null}`

func newTestDashboard(t *testing.T, rec *transport.Recorder) (DashboardModel, *store.Store) {
	t.Helper()
	s := store.New(prediction.NewGateway(rec), aircon.NewGateway(rec))
	m := NewDashboardModel(s, prediction.Input{HeartRate: 70, HRVSDNN: 42, BMI: 22, MeanSaO2: 97, Gender: "female", Age: 30}, "http://test")
	t.Cleanup(m.Close)
	return m, s
}

func press(m DashboardModel, keys string) DashboardModel {
	var msg tea.KeyMsg
	switch keys {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	next, _ := m.Update(msg)
	return next.(DashboardModel)
}

func settle(m DashboardModel) DashboardModel {
	next, _ := m.Update(storeUpdateMsg{})
	return next.(DashboardModel)
}

func lastControl(t *testing.T, rec *transport.Recorder) map[string]any {
	t.Helper()
	var last []byte
	for _, c := range rec.Calls() {
		if c.Path == aircon.ControlPath {
			last = c.Body
		}
	}
	require.NotNil(t, last, "no control request sent")
	var body map[string]any
	require.NoError(t, json.Unmarshal(last, &body))
	return body
}

func TestDashboard_RefreshAndRender(t *testing.T) {
	rec := transport.NewRecorder().Respond("GET", aircon.StatePath, 200, stateBody)
	m, s := newTestDashboard(t, rec)

	m = press(m, "r")
	s.Wait()
	m = settle(m)

	require.Equal(t, store.StatusReady, m.device.Status, m.device.Err)

	view := m.View()
	for _, want := range []string{"ac_001", "ON", "26.5°C", "24.0°C", "COOL", "AUTO", "READY"} {
		assert.Contains(t, view, want)
	}
}

func TestDashboard_ControlKeys(t *testing.T) {
	tests := []struct {
		key  string
		want map[string]any
	}{
		{"+", map[string]any{"action": "set_temperature", "target_temperature": 24.5, "unit": "C"}},
		{"-", map[string]any{"action": "set_temperature", "target_temperature": 23.5, "unit": "C"}},
		{"m", map[string]any{"action": "set_mode", "mode": "AIR_DRY"}},
		{"f", map[string]any{"action": "set_wind_strength", "strength": "HIGH"}},
		{" ", map[string]any{"action": "set_power", "power_on": false}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			rec := transport.NewRecorder().
				Respond("GET", aircon.StatePath, 200, stateBody).
				Respond("POST", aircon.ControlPath, 200, `{"success":true}`)
			m, s := newTestDashboard(t, rec)

			m = press(m, "r")
			s.Wait()
			m = settle(m)

			m = press(m, tt.key)
			s.Wait()

			assert.Equal(t, tt.want, lastControl(t, rec))
		})
	}
}

func TestDashboard_NudgeWithoutStateSendsNothing(t *testing.T) {
	rec := transport.NewRecorder()
	m, s := newTestDashboard(t, rec)

	m = press(m, "+")
	s.Wait()

	assert.Empty(t, rec.Calls())
}

func TestDashboard_Predict(t *testing.T) {
	rec := transport.NewRecorder().
		Respond("GET", prediction.HealthPath, 200, `{"status":"healthy","model_loaded":true}`).
		Respond("POST", prediction.PredictPath, 200, `{"success":true,"predicted_temperature":36.0,"temperature_category":"hot"}`)
	m, s := newTestDashboard(t, rec)

	m = press(m, "p")
	s.Wait()
	m = settle(m)

	var body prediction.PredictRequest
	for _, c := range rec.Calls() {
		if c.Path == prediction.PredictPath {
			require.NoError(t, json.Unmarshal(c.Body, &body))
		}
	}
	assert.Equal(t, prediction.GenderFemale, body.Gender)

	view := m.View()
	assert.Contains(t, view, "36.00°C")
	assert.Contains(t, view, "hot")
}

func TestDashboard_ShowsErrors(t *testing.T) {
	rec := transport.NewRecorder().Fail("GET", prediction.HealthPath, transport.KindConnectionRefused)
	m, s := newTestDashboard(t, rec)

	m = press(m, "p")
	s.Wait()
	m = settle(m)

	assert.Contains(t, m.View(), prediction.MsgServerUnreachable)
	assert.Equal(t, store.StatusFailed, m.result.Status)
}

func TestDashboard_Quit(t *testing.T) {
	m, _ := newTestDashboard(t, transport.NewRecorder())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, next.(DashboardModel).Quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDashboard_SubscriptionWakesProgram(t *testing.T) {
	rec := transport.NewRecorder().Respond("GET", aircon.StatePath, 200, stateBody)
	m, s := newTestDashboard(t, rec)

	s.Refresh()
	s.Wait()

	assert.Equal(t, storeUpdateMsg{}, waitForUpdate(m.updates)())
}

func TestPicker(t *testing.T) {
	backends := []*discovery.Backend{
		{Instance: "lab", IP: "192.168.1.20", Port: 5000},
		{Instance: "office", IP: "192.168.1.21", Port: 5000},
	}
	m := NewPickerModel(func(context.Context) ([]*discovery.Backend, error) {
		return backends, nil
	})

	msg := m.scanCmd()()
	next, _ := m.Update(msg)
	m = next.(PickerModel)
	require.Len(t, m.List.Items(), 2)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PickerModel)
	require.NotNil(t, m.Chosen)
	assert.Equal(t, "lab", m.Chosen.Instance)
}

func TestPicker_ScanError(t *testing.T) {
	m := NewPickerModel(func(context.Context) ([]*discovery.Backend, error) {
		return nil, errors.New("no multicast interface")
	})

	next, _ := m.Update(m.scanCmd()())
	m = next.(PickerModel)
	assert.Contains(t, m.View(), "no multicast interface")
}
