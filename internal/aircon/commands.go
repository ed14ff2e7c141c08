package aircon

import (
	"fmt"
	"math"
)

// Control actions understood by POST /air_conditioner/control
const (
	ActionSetTemperature = "set_temperature"
	ActionSetMode        = "set_mode"
	ActionSetFanSpeed    = "set_wind_strength"
	ActionSetPower       = "set_power"
)

// Command is one control command. It exists only for the duration of a
// single gateway call.
type Command interface {
	Action() string
	Validate() error
	Request() ControlRequest
}

// TemperatureCommand sets the target temperature
type TemperatureCommand struct {
	Value float64
	Unit  TemperatureUnit
}

// ModeCommand sets the job mode
type ModeCommand struct {
	Mode Mode
}

// FanSpeedCommand sets the wind strength
type FanSpeedCommand struct {
	Speed FanSpeed
}

// PowerCommand switches the appliance on or off
type PowerCommand struct {
	On bool
}

func (TemperatureCommand) Action() string { return ActionSetTemperature }
func (ModeCommand) Action() string        { return ActionSetMode }
func (FanSpeedCommand) Action() string    { return ActionSetFanSpeed }
func (PowerCommand) Action() string       { return ActionSetPower }

// Validate rejects non-finite values and unknown units. Range limits are
// left to the appliance, which clamps.
func (c TemperatureCommand) Validate() error {
	if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
		return fmt.Errorf("invalid target temperature %v", c.Value)
	}
	if c.Unit != "" && !c.Unit.Valid() {
		return fmt.Errorf("invalid temperature unit %q (valid: C, F)", c.Unit)
	}
	return nil
}

func (c ModeCommand) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("invalid mode %q", c.Mode)
	}
	return nil
}

func (c FanSpeedCommand) Validate() error {
	if !c.Speed.Valid() {
		return fmt.Errorf("invalid fan speed %q", c.Speed)
	}
	return nil
}

func (PowerCommand) Validate() error { return nil }

// Request builds the wire body. An empty unit is sent as Celsius.
func (c TemperatureCommand) Request() ControlRequest {
	value := c.Value
	unit := c.Unit
	if unit == "" {
		unit = Celsius
	}
	return ControlRequest{Action: c.Action(), TargetTemperature: &value, Unit: &unit}
}

func (c ModeCommand) Request() ControlRequest {
	mode := c.Mode
	return ControlRequest{Action: c.Action(), Mode: &mode}
}

func (c FanSpeedCommand) Request() ControlRequest {
	speed := c.Speed
	return ControlRequest{Action: c.Action(), Strength: &speed}
}

func (c PowerCommand) Request() ControlRequest {
	on := c.On
	return ControlRequest{Action: c.Action(), PowerOn: &on}
}
