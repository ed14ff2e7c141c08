package bridge

import (
	"errors"
	"fmt"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/prediction"
	"github.com/aiservice/poseul/internal/store"
)

// Event is one facet transition as sent to observers
type Event struct {
	Facet   string       `json:"facet"`
	Status  store.Status `json:"status"`
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
	Data    any          `json:"data"`
}

// ErrorEvent reports an intent the bridge could not accept
type ErrorEvent struct {
	Op    string `json:"op,omitempty"`
	Error string `json:"error"`
}

// DeviceData is the device facet payload
type DeviceData struct {
	DeviceID string `json:"device_id"`
	*aircon.DeviceState
}

// PredictionData is the prediction facet payload
type PredictionData struct {
	Success     bool    `json:"success"`
	Temperature float64 `json:"temperature,omitempty"`
	Category    string  `json:"category,omitempty"`
	Message     string  `json:"message,omitempty"`
}

func deviceEvent(snap store.Snapshot[*aircon.DeviceState]) Event {
	e := Event{Facet: snap.Name, Status: snap.Status, Loading: snap.Loading, Error: snap.Err}
	if snap.Data != nil {
		e.Data = DeviceData{DeviceID: snap.Data.Summarize().ID, DeviceState: snap.Data}
	}
	return e
}

func predictionEvent(snap store.Snapshot[*prediction.Result]) Event {
	e := Event{Facet: snap.Name, Status: snap.Status, Loading: snap.Loading, Error: snap.Err}
	if r := snap.Data; r != nil {
		e.Data = PredictionData{
			Success:     r.OK(),
			Temperature: r.Temperature,
			Category:    r.Category,
			Message:     r.Message,
		}
	}
	return e
}

// Intent operations
const (
	OpPredict        = "predict"
	OpRefresh        = "refresh"
	OpSetTemperature = "set_temperature"
	OpSetMode        = "set_mode"
	OpSetFanSpeed    = "set_fan_speed"
	OpSetPower       = "set_power"
	OpTogglePower    = "toggle_power"
)

// Intent is a request from an observer. Only the fields of the named
// operation are read.
type Intent struct {
	Op string `json:"op"`

	// predict; the bridge profile is used when absent
	Input *prediction.PredictRequest `json:"input,omitempty"`

	// set_temperature
	Temperature *float64 `json:"temperature,omitempty"`
	Unit        string   `json:"unit,omitempty"`

	// set_mode
	Mode string `json:"mode,omitempty"`

	// set_fan_speed
	Speed string `json:"speed,omitempty"`

	// set_power
	On *bool `json:"on,omitempty"`
}

// dispatch forwards an intent to the store. It only rejects intents that
// cannot be expressed as a store call; everything else is reported
// through the facets.
func (b *Bridge) dispatch(in Intent) error {
	s := b.store

	switch in.Op {
	case OpPredict:
		input := b.profile
		if in.Input != nil {
			input = prediction.Input{
				HeartRate: in.Input.HRMean,
				HRVSDNN:   in.Input.HRVSDNN,
				BMI:       in.Input.BMI,
				MeanSaO2:  in.Input.MeanSaO2,
				Gender:    in.Input.Gender,
				Age:       in.Input.Age,
			}
		}
		s.Predict(input)

	case OpRefresh:
		s.Refresh()

	case OpSetTemperature:
		if in.Temperature == nil {
			return errors.New("temperature is required")
		}
		unit, err := aircon.ParseUnit(in.Unit)
		if err != nil {
			return err
		}
		s.SetTemperature(*in.Temperature, unit)

	case OpSetMode:
		mode, err := aircon.ParseMode(in.Mode)
		if err != nil {
			return err
		}
		s.SetMode(mode)

	case OpSetFanSpeed:
		speed, err := aircon.ParseFanSpeed(in.Speed)
		if err != nil {
			return err
		}
		s.SetFanSpeed(speed)

	case OpSetPower:
		if in.On == nil {
			return errors.New("on is required")
		}
		s.SetPower(*in.On)

	case OpTogglePower:
		s.TogglePower()

	default:
		return fmt.Errorf("unknown op %q", in.Op)
	}
	return nil
}
