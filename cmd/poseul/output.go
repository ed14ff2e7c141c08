package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/prediction"
	"github.com/aiservice/poseul/internal/store"
	"github.com/aiservice/poseul/internal/transport"
	"github.com/aiservice/poseul/internal/ui"
	"github.com/aiservice/poseul/internal/version"
)

// Output formats
const (
	formatDetailed = "detailed"
	formatJSON     = "json"
)

// errReported marks a failure that has already been shown to the user;
// main exits non-zero without printing it again.
var errReported = errors.New("failure reported")

// backend bundles the gateways for the selected server
type backend struct {
	url       string
	predictor *prediction.Gateway
	appliance *aircon.Gateway
}

// connect builds gateways for the resolved server URL with the
// configured timeouts.
func connect() *backend {
	url := cfg.ResolveServerURL(serverURL)

	client := transport.NewClient(url)
	client.UserAgent = version.UserAgent()

	p := prediction.NewGateway(client)
	p.HealthTimeout = cfg.Timeouts.Health
	p.PredictTimeout = cfg.Timeouts.Predict

	a := aircon.NewGateway(client)
	a.StateTimeout = cfg.Timeouts.State
	a.ControlTimeout = cfg.Timeouts.Control

	return &backend{url: client.BaseURL, predictor: p, appliance: a}
}

func (b *backend) store() *store.Store {
	return store.New(b.predictor, b.appliance)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// stateJSON is the json rendering of the device facet
type stateJSON struct {
	Status   store.Status        `json:"status"`
	Error    string              `json:"error,omitempty"`
	DeviceID string              `json:"device_id,omitempty"`
	State    *aircon.DeviceState `json:"state"`
}

// printDevice renders a settled device facet. A failed facet returns
// errReported so the command exits non-zero; tips are shown with it.
func printDevice(w io.Writer, title, server string, snap store.Snapshot[*aircon.DeviceState], tips []string) error {
	if outputFormat == formatJSON {
		out := stateJSON{Status: snap.Status, Error: snap.Err, State: snap.Data}
		if snap.Data != nil {
			out.DeviceID = snap.Data.Summarize().ID
		}
		if err := printJSON(w, out); err != nil {
			return err
		}
		if snap.Status == store.StatusFailed {
			return errReported
		}
		return nil
	}

	p := ui.NewPrinter(w)
	p.PrintHeader(title, ui.Detail{Key: "Server", Value: server})

	if snap.Status == store.StatusFailed {
		p.PrintError(title+" failed", snap.Err, tips)
		return errReported
	}

	r := ui.NewSuccessResult(title)
	for _, d := range deviceDetails(snap.Data) {
		r.AddDetail(d.Key, d.Value)
	}
	p.PrintResult(r)
	return nil
}

func deviceDetails(s *aircon.DeviceState) []ui.Detail {
	if s == nil {
		return nil
	}
	power := "OFF"
	if s.IsOn() {
		power = "ON"
	}
	unit := s.Unit()

	details := []ui.Detail{
		{Key: "Device", Value: s.Summarize().ID},
		{Key: "Power", Value: power},
		{Key: "Room", Value: temperature(s.CurrentTemperature, unit)},
		{Key: "Target", Value: temperature(s.TargetTemperature, unit)},
		{Key: "Mode", Value: orUnknown(s.Mode)},
		{Key: "Fan", Value: orUnknown(s.FanSpeed)},
	}
	if aq := s.AirQuality; aq != nil {
		if aq.Humidity != nil {
			details = append(details, ui.Detail{Key: "Humidity", Value: fmt.Sprintf("%d%%", *aq.Humidity)})
		}
		if aq.PM1 != nil && aq.PM2 != nil && aq.PM10 != nil {
			details = append(details, ui.Detail{Key: "PM1/2.5/10", Value: fmt.Sprintf("%d / %d / %d µg/m³", *aq.PM1, *aq.PM2, *aq.PM10)})
		}
	}
	if s.FilterPercent != nil {
		details = append(details, ui.Detail{Key: "Filter", Value: fmt.Sprintf("%d%%", *s.FilterPercent)})
	}
	return details
}

func temperature(v *float64, unit aircon.TemperatureUnit) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.1f°%s", *v, unit)
}

func orUnknown[T ~string](v *T) string {
	if v == nil {
		return "unknown"
	}
	return string(*v)
}

// predictionJSON is the json rendering of a prediction result
type predictionJSON struct {
	Success     bool    `json:"success"`
	Temperature float64 `json:"predicted_temperature,omitempty"`
	Category    string  `json:"temperature_category,omitempty"`
	Error       string  `json:"error,omitempty"`
}

func printPrediction(w io.Writer, server string, in prediction.Input, r prediction.Result) error {
	if outputFormat == formatJSON {
		if err := printJSON(w, predictionJSON{
			Success:     r.OK(),
			Temperature: r.Temperature,
			Category:    r.Category,
			Error:       r.Message,
		}); err != nil {
			return err
		}
		if !r.OK() {
			return errReported
		}
		return nil
	}

	p := ui.NewPrinter(w)
	p.PrintHeader("Comfort prediction",
		ui.Detail{Key: "Server", Value: server},
		ui.Detail{Key: "Input", Value: fmt.Sprintf("HR %d, HRV %.1f, BMI %.1f, SpO2 %.1f, %s, age %d",
			in.HeartRate, in.HRVSDNN, in.BMI, in.MeanSaO2, prediction.NormalizeGender(in.Gender), in.Age)},
	)

	if !r.OK() {
		var tips []string
		switch r.Message {
		case prediction.MsgServerUnreachable:
			tips = []string{
				"Verify the server URL (--server or POSEUL_SERVER_URL)",
				"Run 'poseul health' to check the backend",
			}
		case prediction.MsgModelNotReady:
			tips = []string{"The backend is up but has no model loaded yet"}
		}
		p.PrintError("Prediction failed", r.Message, tips)
		return errReported
	}

	p.PrintSuccess("Prediction complete",
		ui.Detail{Key: "Temperature", Value: fmt.Sprintf("%.2f°C", r.Temperature)},
		ui.Detail{Key: "Category", Value: r.Category},
	)
	return nil
}
