package aircon

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aiservice/poseul/internal/codec"
	"github.com/aiservice/poseul/internal/logging"
	"github.com/aiservice/poseul/internal/transport"
)

const (
	// DefaultStateTimeout bounds GET /air_conditioner/state
	DefaultStateTimeout = 10 * time.Second

	// DefaultControlTimeout bounds POST /air_conditioner/control
	DefaultControlTimeout = 10 * time.Second
)

// Gateway issues control commands against the single appliance resource.
//
// It never mutates or caches DeviceState. A successful control response
// only means the backend accepted the command; callers must ReadState to
// observe what the appliance actually applied.
type Gateway struct {
	exec transport.Executor

	// StateTimeout bounds each state read
	StateTimeout time.Duration

	// ControlTimeout bounds each control post
	ControlTimeout time.Duration
}

// NewGateway creates a gateway with the default timeouts
func NewGateway(exec transport.Executor) *Gateway {
	return &Gateway{
		exec:           exec,
		StateTimeout:   DefaultStateTimeout,
		ControlTimeout: DefaultControlTimeout,
	}
}

// ReadState fetches the current appliance state.
// Errors are *transport.Error, *codec.DecodeError or *codec.ProtocolError;
// codec.Message turns any of them into display text.
func (g *Gateway) ReadState(ctx context.Context) (*DeviceState, error) {
	resp, err := g.exec.Execute(ctx, http.MethodGet, StatePath, nil, g.StateTimeout)
	if err != nil {
		return nil, err
	}

	var body StateResponse
	if err := codec.Decode(codec.NormalizeBody(resp.StatusCode, resp.Body), &body); err != nil {
		logging.Warn("Undecodable state response",
			zap.String("request_id", resp.RequestID),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err),
		)
		return nil, err
	}

	if !body.Success {
		return nil, codec.ServerFailure(resp.StatusCode, body.Error, "state read failed")
	}

	state := DeviceState{}
	if body.State != nil {
		state = *body.State
	}
	if body.DeviceID != nil {
		state.DeviceID = *body.DeviceID
	}

	logging.Debug("Air conditioner state read",
		zap.String("request_id", resp.RequestID),
		zap.String("device_id", state.DeviceID),
		zap.Bool("power_on", state.IsOn()),
	)

	return &state, nil
}

// Apply validates and sends one command. It never retries and never
// re-reads state; transport, decode and server failures all reduce to an
// unsuccessful Outcome.
func (g *Gateway) Apply(ctx context.Context, cmd Command) Outcome {
	outcome := Outcome{Action: cmd.Action()}

	if err := cmd.Validate(); err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	payload, err := codec.Encode(cmd.Request())
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	logging.Info("Sending control command",
		zap.String("action", cmd.Action()),
		zap.ByteString("payload", payload),
	)

	resp, err := g.exec.Execute(ctx, http.MethodPost, ControlPath, payload, g.ControlTimeout)
	if err != nil {
		outcome.Error = codec.Message(err)
		return outcome
	}

	var body ControlResponse
	if err := codec.Decode(codec.NormalizeBody(resp.StatusCode, resp.Body), &body); err != nil {
		outcome.Error = codec.Message(err)
		logging.Warn("Undecodable control response",
			zap.String("request_id", resp.RequestID),
			zap.String("action", cmd.Action()),
			zap.Error(err),
		)
		return outcome
	}

	if !body.Success {
		outcome.Error = codec.ServerFailure(resp.StatusCode, body.Error, "control command rejected").Message
		logging.Warn("Control command rejected",
			zap.String("request_id", resp.RequestID),
			zap.String("action", cmd.Action()),
			zap.String("error", outcome.Error),
		)
		return outcome
	}

	outcome.Success = true
	if body.Action != nil {
		outcome.Action = *body.Action
	}
	return outcome
}

// SetTemperature sets the target temperature. An empty unit means Celsius.
func (g *Gateway) SetTemperature(ctx context.Context, value float64, unit TemperatureUnit) Outcome {
	return g.Apply(ctx, TemperatureCommand{Value: value, Unit: unit})
}

// SetMode sets the job mode
func (g *Gateway) SetMode(ctx context.Context, mode Mode) Outcome {
	return g.Apply(ctx, ModeCommand{Mode: mode})
}

// SetFanSpeed sets the wind strength
func (g *Gateway) SetFanSpeed(ctx context.Context, speed FanSpeed) Outcome {
	return g.Apply(ctx, FanSpeedCommand{Speed: speed})
}

// SetPower switches the appliance on or off
func (g *Gateway) SetPower(ctx context.Context, on bool) Outcome {
	return g.Apply(ctx, PowerCommand{On: on})
}

// TogglePower reads the current power state and requests the opposite.
// An unreadable or unknown state counts as off.
func (g *Gateway) TogglePower(ctx context.Context) Outcome {
	current := false
	state, err := g.ReadState(ctx)
	if err != nil {
		logging.Debug("Toggle could not read power state, assuming off", zap.Error(err))
	} else {
		current = state.IsOn()
	}
	return g.SetPower(ctx, !current)
}
