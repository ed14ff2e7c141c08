package prediction

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aiservice/poseul/internal/codec"
	"github.com/aiservice/poseul/internal/logging"
	"github.com/aiservice/poseul/internal/transport"
)

const (
	// DefaultHealthTimeout bounds the health check
	DefaultHealthTimeout = 5 * time.Second

	// DefaultPredictTimeout bounds the prediction request
	DefaultPredictTimeout = 5 * time.Second
)

// Messages for a failed health check
const (
	MsgServerUnreachable = "server unreachable"
	MsgModelNotReady     = "model not ready"
)

// ErrModelNotReady is returned by CheckHealth when the server answers but has
// no model loaded
var ErrModelNotReady = errors.New(MsgModelNotReady)

// Gateway runs predictions against the model server. Each Predict is a
// health check followed by the prediction request; a failed step ends the
// operation and nothing is retried.
type Gateway struct {
	exec transport.Executor

	// HealthTimeout bounds GET /health and GET /model_info
	HealthTimeout time.Duration

	// PredictTimeout bounds POST /predict
	PredictTimeout time.Duration
}

// NewGateway creates a gateway with the default timeouts
func NewGateway(exec transport.Executor) *Gateway {
	return &Gateway{
		exec:           exec,
		HealthTimeout:  DefaultHealthTimeout,
		PredictTimeout: DefaultPredictTimeout,
	}
}

// CheckHealth queries GET /health. It returns the decoded response together
// with ErrModelNotReady when the server reports no model, or the
// transport/decode error when the server could not be asked.
func (g *Gateway) CheckHealth(ctx context.Context) (*HealthResponse, error) {
	resp, err := g.exec.Execute(ctx, http.MethodGet, HealthPath, nil, g.HealthTimeout)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := codec.Decode(codec.NormalizeBody(resp.StatusCode, resp.Body), &health); err != nil {
		return nil, err
	}
	if !health.Ready() {
		return &health, ErrModelNotReady
	}
	return &health, nil
}

// Predict returns a temperature prediction for in. It never returns an
// error; every failure is reported as a Failure result.
func (g *Gateway) Predict(ctx context.Context, in Input) Result {
	if _, err := g.CheckHealth(ctx); err != nil {
		var te *transport.Error
		msg := MsgModelNotReady
		if errors.As(err, &te) {
			msg = MsgServerUnreachable
		}
		logging.Warn("Health check failed, skipping prediction",
			zap.String("result", msg),
			zap.Error(err),
		)
		return Failure(msg)
	}

	req := in.Request()
	payload, err := codec.Encode(req)
	if err != nil {
		return Failure(err.Error())
	}

	resp, err := g.exec.Execute(ctx, http.MethodPost, PredictPath, payload, g.PredictTimeout)
	if err != nil {
		return Failure(codec.Message(err))
	}

	body := codec.NormalizeBody(resp.StatusCode, resp.Body)

	var reply PredictResponse
	if err := codec.Decode(body, &reply); err != nil {
		if msg := serverMessage(body); msg != "" {
			return Failure(msg)
		}
		logging.Warn("Undecodable prediction response",
			zap.String("request_id", resp.RequestID),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err),
		)
		return Failure(codec.Message(err))
	}

	if !reply.Success {
		return Failure(codec.ServerFailure(resp.StatusCode, reply.Error, "prediction failed").Message)
	}
	temp, ok := codec.Number(reply.PredictedTemperature)
	if !ok {
		return Failure("invalid server response: no predicted_temperature")
	}

	category := ClassifyTemperature(temp)
	if reply.TemperatureCategory != nil && *reply.TemperatureCategory != "" {
		category = *reply.TemperatureCategory
	}

	logging.Info("Prediction complete",
		zap.String("request_id", resp.RequestID),
		zap.Float64("temperature", temp),
		zap.String("category", category),
		zap.String("gender", req.Gender),
	)

	return Success(temp, category)
}

// ModelInfo returns the raw body of GET /model_info
func (g *Gateway) ModelInfo(ctx context.Context) (string, error) {
	resp, err := g.exec.Execute(ctx, http.MethodGet, ModelInfoPath, nil, g.HealthTimeout)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		msg := serverMessage(resp.Body)
		var text *string
		if msg != "" {
			text = &msg
		}
		return "", codec.ServerFailure(resp.StatusCode, text, "model info unavailable")
	}
	return resp.Text(), nil
}

// LoadModel reports whether the server has a model ready. The server
// loads its model at startup so there is nothing to trigger.
func (g *Gateway) LoadModel(ctx context.Context) bool {
	_, err := g.CheckHealth(ctx)
	return err == nil
}

// Retrain accepts new samples for model training. Training is not
// supported by the server; the samples are only logged and the call
// succeeds unless ctx is already done.
func (g *Gateway) Retrain(ctx context.Context, samples []TrainingSample) bool {
	if ctx.Err() != nil {
		return false
	}
	logging.Info("Retrain requested, nothing to do", zap.Int("samples", len(samples)))
	return true
}
