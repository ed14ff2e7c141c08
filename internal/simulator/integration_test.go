package simulator_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/prediction"
	"github.com/aiservice/poseul/internal/simulator"
	"github.com/aiservice/poseul/internal/store"
	"github.com/aiservice/poseul/internal/transport"
)

func startSimulator(t *testing.T, opts simulator.Options) (*simulator.Simulator, *transport.Client) {
	t.Helper()
	sim := simulator.New(opts)
	srv := httptest.NewServer(sim.Handler())
	t.Cleanup(srv.Close)
	return sim, transport.NewClient(srv.URL)
}

func TestEndToEnd_Prediction(t *testing.T) {
	_, client := startSimulator(t, simulator.DefaultOptions())
	gw := prediction.NewGateway(client)

	result := gw.Predict(context.Background(), prediction.Input{
		HeartRate: 70, HRVSDNN: 42, BMI: 22, MeanSaO2: 97, Gender: prediction.GenderMale, Age: 30,
	})
	require.True(t, result.OK(), result.Message)
	assert.Equal(t, 35.0, result.Temperature)
	assert.Equal(t, "comfortable", result.Category)

	info, err := gw.ModelInfo(context.Background())
	require.NoError(t, err)
	assert.Contains(t, info, "simulated linear model")
	assert.True(t, gw.LoadModel(context.Background()))
}

func TestEndToEnd_ModelNotLoaded(t *testing.T) {
	opts := simulator.DefaultOptions()
	opts.ModelLoaded = false
	_, client := startSimulator(t, opts)

	result := prediction.NewGateway(client).Predict(context.Background(), prediction.Input{
		HeartRate: 70, HRVSDNN: 42, BMI: 22, MeanSaO2: 97, Gender: prediction.GenderMale, Age: 30,
	})
	assert.False(t, result.OK())
	assert.Equal(t, prediction.MsgModelNotReady, result.Message)
}

func TestEndToEnd_ServerDown(t *testing.T) {
	srv := httptest.NewServer(simulator.New(simulator.DefaultOptions()).Handler())
	url := srv.URL
	srv.Close()

	client := transport.NewClient(url)
	s := store.New(prediction.NewGateway(client), aircon.NewGateway(client))

	s.Predict(prediction.Input{HeartRate: 70, HRVSDNN: 42, BMI: 22, MeanSaO2: 97, Age: 30})
	s.Refresh()
	s.Wait()

	pred := s.Prediction().Snapshot()
	assert.Equal(t, store.StatusFailed, pred.Status)
	assert.Equal(t, prediction.MsgServerUnreachable, pred.Err)

	dev := s.Device().Snapshot()
	assert.Equal(t, store.StatusFailed, dev.Status)
	assert.Nil(t, dev.Data)
	assert.NotEmpty(t, dev.Err)
}

func TestEndToEnd_StoreControlRoundTrip(t *testing.T) {
	sim, client := startSimulator(t, simulator.DefaultOptions())
	s := store.New(prediction.NewGateway(client), aircon.NewGateway(client))

	s.Refresh()
	s.Wait()
	dev := s.Device().Snapshot()
	require.Equal(t, store.StatusReady, dev.Status, dev.Err)
	assert.False(t, dev.Data.IsOn())
	assert.Equal(t, "ac_001", dev.Data.DeviceID)

	s.TogglePower()
	s.Wait()
	dev = s.Device().Snapshot()
	require.Equal(t, store.StatusReady, dev.Status, dev.Err)
	assert.True(t, dev.Data.IsOn())

	s.SetTemperature(31.2, aircon.Celsius)
	s.Wait()
	dev = s.Device().Snapshot()
	require.Equal(t, store.StatusReady, dev.Status, dev.Err)
	assert.Equal(t, simulator.MaxTargetC, *dev.Data.TargetTemperature)

	s.SetMode(aircon.ModeAirDry)
	s.Wait()
	s.SetFanSpeed(aircon.FanLow)
	s.Wait()
	dev = s.Device().Snapshot()
	require.Equal(t, store.StatusReady, dev.Status, dev.Err)
	assert.Equal(t, aircon.ModeAirDry, *dev.Data.Mode)
	assert.Equal(t, aircon.FanLow, *dev.Data.FanSpeed)

	sim.Appliance.SetOffline(true)
	s.SetPower(false)
	s.Wait()
	dev = s.Device().Snapshot()
	assert.Equal(t, store.StatusFailed, dev.Status)
	assert.Contains(t, dev.Err, "device offline")
	assert.True(t, dev.Data.IsOn(), "last known state survives a failed command")
}
