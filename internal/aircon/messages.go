package aircon

import "github.com/aiservice/poseul/internal/codec"

// Backend endpoints
const (
	StatePath   = "/air_conditioner/state"
	ControlPath = "/air_conditioner/control"
)

// ControlRequest is the body of POST /air_conditioner/control
type ControlRequest struct {
	Action            string           `json:"action"`
	TargetTemperature *float64         `json:"target_temperature,omitempty"`
	Unit              *TemperatureUnit `json:"unit,omitempty"`
	Mode              *Mode            `json:"mode,omitempty"`
	Strength          *FanSpeed        `json:"strength,omitempty"`
	PowerOn           *bool            `json:"power_on,omitempty"`
}

// ControlResponse is the reply to a control command
type ControlResponse struct {
	Success bool    `json:"success"`
	Action  *string `json:"action,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// RequiredFields implements codec.Validated
func (ControlResponse) RequiredFields() []codec.Field {
	return []codec.Field{{Name: "success", Type: codec.TypeBool}}
}

// StateResponse is the reply to GET /air_conditioner/state
type StateResponse struct {
	Success  bool         `json:"success"`
	DeviceID *string      `json:"device_id,omitempty"`
	State    *DeviceState `json:"state,omitempty"`
	Error    *string      `json:"error,omitempty"`
}

// RequiredFields implements codec.Validated
func (StateResponse) RequiredFields() []codec.Field {
	return []codec.Field{{Name: "success", Type: codec.TypeBool}}
}

// Outcome is what every control call reduces to
type Outcome struct {
	Success bool
	Action  string
	Error   string
}
