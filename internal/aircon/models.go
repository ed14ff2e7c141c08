package aircon

import (
	"fmt"
	"math"
	"strings"
)

// TemperatureUnit is the unit a temperature is expressed in
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "C"
	Fahrenheit TemperatureUnit = "F"
)

// Mode is the appliance job mode
type Mode string

const (
	ModeCool     Mode = "COOL"
	ModeAirDry   Mode = "AIR_DRY"
	ModeAirClean Mode = "AIR_CLEAN"
	ModeAuto     Mode = "AUTO"
)

// Modes lists the supported modes in display order
var Modes = []Mode{ModeCool, ModeAirDry, ModeAirClean, ModeAuto}

// FanSpeed is the appliance wind strength
type FanSpeed string

const (
	FanHigh FanSpeed = "HIGH"
	FanMid  FanSpeed = "MID"
	FanLow  FanSpeed = "LOW"
	FanAuto FanSpeed = "AUTO"
)

// FanSpeeds lists the supported fan speeds in display order
var FanSpeeds = []FanSpeed{FanHigh, FanMid, FanLow, FanAuto}

// Korean labels used by the original mobile app and ThinQ scripts
var (
	modeAliases = map[string]Mode{
		"냉방":   ModeCool,
		"제습":   ModeAirDry,
		"공기청정": ModeAirClean,
		"자동":   ModeAuto,
	}
	fanAliases = map[string]FanSpeed{
		"강":  FanHigh,
		"중":  FanMid,
		"약":  FanLow,
		"자동": FanAuto,
	}
)

func canonical(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return strings.ToUpper(s)
}

// ParseMode parses a mode name, case-insensitively. "air dry", "air-dry"
// and the Korean labels are accepted.
func ParseMode(s string) (Mode, error) {
	if m, ok := modeAliases[strings.TrimSpace(s)]; ok {
		return m, nil
	}
	m := Mode(canonical(s))
	if !m.Valid() {
		return "", fmt.Errorf("invalid mode %q (valid: COOL, AIR_DRY, AIR_CLEAN, AUTO)", s)
	}
	return m, nil
}

// Valid reports whether m is a supported mode
func (m Mode) Valid() bool {
	switch m {
	case ModeCool, ModeAirDry, ModeAirClean, ModeAuto:
		return true
	}
	return false
}

// Next returns the mode after m in display order, wrapping around
func (m Mode) Next() Mode {
	for i, candidate := range Modes {
		if candidate == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Modes[0]
}

// ParseFanSpeed parses a fan speed name, case-insensitively.
// "medium" is accepted for MID, as are the Korean labels.
func ParseFanSpeed(s string) (FanSpeed, error) {
	if f, ok := fanAliases[strings.TrimSpace(s)]; ok {
		return f, nil
	}
	c := canonical(s)
	if c == "MEDIUM" {
		c = string(FanMid)
	}
	f := FanSpeed(c)
	if !f.Valid() {
		return "", fmt.Errorf("invalid fan speed %q (valid: HIGH, MID, LOW, AUTO)", s)
	}
	return f, nil
}

// Valid reports whether f is a supported fan speed
func (f FanSpeed) Valid() bool {
	switch f {
	case FanHigh, FanMid, FanLow, FanAuto:
		return true
	}
	return false
}

// Next returns the fan speed after f in display order, wrapping around
func (f FanSpeed) Next() FanSpeed {
	for i, candidate := range FanSpeeds {
		if candidate == f {
			return FanSpeeds[(i+1)%len(FanSpeeds)]
		}
	}
	return FanSpeeds[0]
}

// ParseUnit parses "C"/"F" (case-insensitive). An empty string means Celsius.
func ParseUnit(s string) (TemperatureUnit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "C", "CELSIUS":
		return Celsius, nil
	case "F", "FAHRENHEIT":
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("invalid temperature unit %q (valid: C, F)", s)
}

// Valid reports whether u is a supported unit
func (u TemperatureUnit) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

// AirQuality is the appliance's air quality sensor block
type AirQuality struct {
	PM1      *int `json:"pm1,omitempty"`
	PM2      *int `json:"pm2,omitempty"`
	PM10     *int `json:"pm10,omitempty"`
	Humidity *int `json:"humidity,omitempty"`
}

// DeviceState is the last state read from the appliance. Every field is
// optional; the backend omits whatever the appliance did not report.
// It is always replaced wholesale from a state read.
type DeviceState struct {
	DeviceID           string           `json:"-"`
	PowerOn            *bool            `json:"power_on,omitempty"`
	CurrentTemperature *float64         `json:"current_temperature,omitempty"`
	TargetTemperature  *float64         `json:"target_temperature,omitempty"`
	TemperatureUnit    *TemperatureUnit `json:"temperature_unit,omitempty"`
	Mode               *Mode            `json:"job_mode,omitempty"`
	FanSpeed           *FanSpeed        `json:"wind_strength,omitempty"`
	AirQuality         *AirQuality      `json:"air_quality,omitempty"`
	FilterPercent      *int             `json:"filter_percent,omitempty"`
}

// IsOn reports the power state, treating unknown as off
func (s *DeviceState) IsOn() bool {
	return s != nil && s.PowerOn != nil && *s.PowerOn
}

// Unit returns the reported unit, defaulting to Celsius
func (s *DeviceState) Unit() TemperatureUnit {
	if s == nil || s.TemperatureUnit == nil || !s.TemperatureUnit.Valid() {
		return Celsius
	}
	return *s.TemperatureUnit
}

// Summary is the flattened device view the original app listed on its
// device screen.
type Summary struct {
	ID                 string
	Name               string
	Type               string
	Online             bool
	PowerOn            bool
	CurrentTemperature *int
	TargetTemperature  *int
}

// DefaultDeviceID is used when the backend does not report one
const DefaultDeviceID = "ac_001"

// Summarize flattens a state into a Summary. Temperatures are rounded.
func (s *DeviceState) Summarize() Summary {
	id := DefaultDeviceID
	if s != nil && s.DeviceID != "" {
		id = s.DeviceID
	}
	sum := Summary{
		ID:      id,
		Name:    "Air conditioner",
		Type:    "air_conditioner",
		Online:  s.IsOn(),
		PowerOn: s.IsOn(),
	}
	if s == nil {
		return sum
	}
	if s.CurrentTemperature != nil {
		v := int(math.Round(*s.CurrentTemperature))
		sum.CurrentTemperature = &v
	}
	if s.TargetTemperature != nil {
		v := int(math.Round(*s.TargetTemperature))
		sum.TargetTemperature = &v
	}
	return sum
}
