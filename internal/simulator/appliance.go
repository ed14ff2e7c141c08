package simulator

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/aiservice/poseul/internal/aircon"
)

// Supported target ranges per unit
const (
	MinTargetC = 18.0
	MaxTargetC = 30.0
	MinTargetF = 64.0
	MaxTargetF = 86.0
)

// ErrOffline is reported for every call while the appliance is offline
var ErrOffline = errors.New("device offline")

// Appliance is a simulated air conditioner
type Appliance struct {
	mu sync.Mutex

	id      string
	offline bool

	powerOn       bool
	current       float64
	target        float64
	unit          aircon.TemperatureUnit
	mode          aircon.Mode
	fan           aircon.FanSpeed
	air           aircon.AirQuality
	filterPercent int
}

// NewAppliance creates an appliance that is off, cooling to 24°C in a
// 27°C room.
func NewAppliance(id string) *Appliance {
	pm1, pm2, pm10, humidity := 4, 7, 11, 55
	return &Appliance{
		id:            id,
		current:       27,
		target:        24,
		unit:          aircon.Celsius,
		mode:          aircon.ModeCool,
		fan:           aircon.FanAuto,
		air:           aircon.AirQuality{PM1: &pm1, PM2: &pm2, PM10: &pm10, Humidity: &humidity},
		filterPercent: 83,
	}
}

// ID returns the device id
func (a *Appliance) ID() string {
	return a.id
}

// SetOffline makes every read and command fail with ErrOffline
func (a *Appliance) SetOffline(offline bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offline = offline
}

// State returns a copy of the current state
func (a *Appliance) State() (*aircon.DeviceState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.offline {
		return nil, ErrOffline
	}

	powerOn := a.powerOn
	current := a.current
	target := a.target
	unit := a.unit
	mode := a.mode
	fan := a.fan
	air := a.air
	filter := a.filterPercent

	return &aircon.DeviceState{
		DeviceID:           a.id,
		PowerOn:            &powerOn,
		CurrentTemperature: &current,
		TargetTemperature:  &target,
		TemperatureUnit:    &unit,
		Mode:               &mode,
		FanSpeed:           &fan,
		AirQuality:         &air,
		FilterPercent:      &filter,
	}, nil
}

// Apply executes one control request
func (a *Appliance) Apply(req aircon.ControlRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.offline {
		return ErrOffline
	}

	switch req.Action {
	case aircon.ActionSetTemperature:
		if req.TargetTemperature == nil {
			return errors.New("target_temperature is required")
		}
		unit := aircon.Celsius
		if req.Unit != nil {
			unit = *req.Unit
		}
		if !unit.Valid() {
			return fmt.Errorf("unsupported unit %q", unit)
		}
		a.target = clampTarget(*req.TargetTemperature, unit)
		a.unit = unit

	case aircon.ActionSetMode:
		if req.Mode == nil || !req.Mode.Valid() {
			return errors.New("mode must be one of COOL, AIR_DRY, AIR_CLEAN, AUTO")
		}
		a.mode = *req.Mode

	case aircon.ActionSetFanSpeed:
		if req.Strength == nil || !req.Strength.Valid() {
			return errors.New("strength must be one of HIGH, MID, LOW, AUTO")
		}
		a.fan = *req.Strength

	case aircon.ActionSetPower:
		if req.PowerOn == nil {
			return errors.New("power_on is required")
		}
		a.powerOn = *req.PowerOn

	default:
		return fmt.Errorf("unknown action %q", req.Action)
	}

	return nil
}

// clampTarget rounds to the nearest half degree and clamps to the
// supported range for unit.
func clampTarget(value float64, unit aircon.TemperatureUnit) float64 {
	lo, hi := MinTargetC, MaxTargetC
	if unit == aircon.Fahrenheit {
		lo, hi = MinTargetF, MaxTargetF
	}
	v := math.Round(value*2) / 2
	return math.Max(lo, math.Min(hi, v))
}
