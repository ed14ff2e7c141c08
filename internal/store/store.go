// Package store holds the last known device state and prediction result
// and runs user intents against the gateways.
//
// Every operation returns immediately. The affected facet switches to
// loading before the gateway is called and settles to ready or failed
// when the work finishes on its own goroutine. Concurrent operations on
// the same facet are not fenced: whichever finishes last wins.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/codec"
	"github.com/aiservice/poseul/internal/logging"
	"github.com/aiservice/poseul/internal/prediction"
)

// Facet names
const (
	FacetDevice     = "device"
	FacetPrediction = "prediction"
)

// Appliance is the part of the device control gateway the store uses
type Appliance interface {
	ReadState(ctx context.Context) (*aircon.DeviceState, error)
	Apply(ctx context.Context, cmd aircon.Command) aircon.Outcome
	TogglePower(ctx context.Context) aircon.Outcome
}

// Predictor is the part of the prediction gateway the store uses
type Predictor interface {
	Predict(ctx context.Context, in prediction.Input) prediction.Result
}

// Store mediates between the gateways and observers
type Store struct {
	appliance Appliance
	predictor Predictor
	ctx       context.Context

	device *Facet[*aircon.DeviceState]
	result *Facet[*prediction.Result]

	wg sync.WaitGroup
}

// New creates a store with both facets idle
func New(predictor Predictor, appliance Appliance) *Store {
	return &Store{
		appliance: appliance,
		predictor: predictor,
		ctx:       context.Background(),
		device:    newFacet[*aircon.DeviceState](FacetDevice),
		result:    newFacet[*prediction.Result](FacetPrediction),
	}
}

// Device returns the device state facet
func (s *Store) Device() *Facet[*aircon.DeviceState] {
	return s.device
}

// Prediction returns the prediction result facet
func (s *Store) Prediction() *Facet[*prediction.Result] {
	return s.result
}

// Wait blocks until every operation started so far has settled
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) goWork(work func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		work()
	}()
}

// Predict runs a prediction. A failed result settles the facet as failed
// with the result's message; the result itself is kept either way.
func (s *Store) Predict(in prediction.Input) {
	s.result.begin()
	s.goWork(func() {
		result := s.predictor.Predict(s.ctx, in)
		if result.OK() {
			s.result.succeed(&result)
			return
		}
		logging.Debug("Prediction failed", zap.String("error", result.Message))
		s.result.failWith(&result, result.Message)
	})
}

// Refresh re-reads the device state
func (s *Store) Refresh() {
	s.device.begin()
	s.goWork(s.readState)
}

func (s *Store) readState() {
	state, err := s.appliance.ReadState(s.ctx)
	if err != nil {
		msg := codec.Message(err)
		logging.Debug("Device state refresh failed", zap.String("error", msg))
		s.device.fail(msg)
		return
	}
	s.device.succeed(state)
}

// SetTemperature sets the target temperature and refreshes on success
func (s *Store) SetTemperature(value float64, unit aircon.TemperatureUnit) {
	s.control(aircon.TemperatureCommand{Value: value, Unit: unit})
}

// SetMode sets the job mode and refreshes on success
func (s *Store) SetMode(mode aircon.Mode) {
	s.control(aircon.ModeCommand{Mode: mode})
}

// SetFanSpeed sets the wind strength and refreshes on success
func (s *Store) SetFanSpeed(speed aircon.FanSpeed) {
	s.control(aircon.FanSpeedCommand{Speed: speed})
}

// SetPower switches the appliance and refreshes on success
func (s *Store) SetPower(on bool) {
	s.control(aircon.PowerCommand{On: on})
}

// TogglePower inverts the appliance power and refreshes on success
func (s *Store) TogglePower() {
	s.mutate("toggle_power", func() aircon.Outcome {
		return s.appliance.TogglePower(s.ctx)
	})
}

func (s *Store) control(cmd aircon.Command) {
	s.mutate(cmd.Action(), func() aircon.Outcome {
		return s.appliance.Apply(s.ctx, cmd)
	})
}

// mutate runs a control call and, only if it succeeded, reads the state
// back. The device facet stays loading across both steps.
func (s *Store) mutate(action string, call func() aircon.Outcome) {
	s.device.begin()
	s.goWork(func() {
		outcome := call()
		if !outcome.Success {
			logging.Info("Control command failed",
				zap.String("action", action),
				zap.String("error", outcome.Error),
			)
			s.device.fail(outcome.Error)
			return
		}
		s.readState()
	})
}
