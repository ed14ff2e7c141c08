package simulator

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/logging"
	"github.com/aiservice/poseul/internal/prediction"
)

// Options tunes a Simulator
type Options struct {
	// DeviceID is reported by the state endpoint
	DeviceID string

	// ModelLoaded is the initial model state
	ModelLoaded bool

	// ControlRate and ControlBurst bound control commands per client
	ControlRate  rate.Limit
	ControlBurst int

	// ModelInfoTTL is how long /model_info responses are cached
	ModelInfoTTL time.Duration
}

// DefaultOptions returns a loaded model, device "ac_001" and a control
// budget of 5 commands per second with a burst of 10.
func DefaultOptions() Options {
	return Options{
		DeviceID:     aircon.DefaultDeviceID,
		ModelLoaded:  true,
		ControlRate:  rate.Limit(5),
		ControlBurst: 10,
		ModelInfoTTL: time.Minute,
	}
}

// Simulator serves the backend API
type Simulator struct {
	Appliance *Appliance
	Model     *Model

	cache  *cache.Cache
	engine *gin.Engine
}

// New creates a simulator and its router
func New(opts Options) *Simulator {
	if opts.DeviceID == "" {
		opts.DeviceID = aircon.DefaultDeviceID
	}
	if opts.ModelInfoTTL <= 0 {
		opts.ModelInfoTTL = time.Minute
	}

	s := &Simulator{
		Appliance: NewAppliance(opts.DeviceID),
		Model:     NewModel(opts.ModelLoaded),
		cache:     cache.New(opts.ModelInfoTTL, 2*opts.ModelInfoTTL),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET(prediction.HealthPath, s.health)
	r.POST(prediction.PredictPath, s.predict)
	r.GET(prediction.ModelInfoPath, cacheGET(s.cache, opts.ModelInfoTTL), s.modelInfo)

	r.GET(aircon.StatePath, s.state)
	r.POST(aircon.ControlPath, rateLimit(opts.ControlRate, opts.ControlBurst), s.control)

	s.engine = r
	return s
}

// Handler returns the HTTP handler
func (s *Simulator) Handler() http.Handler {
	return s.engine
}

// SetModelLoaded changes the model state and drops cached model info
func (s *Simulator) SetModelLoaded(loaded bool) {
	s.Model.SetLoaded(loaded)
	s.cache.Flush()
}

func (s *Simulator) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": s.Model.Loaded(),
	})
}

// requiredParams are the /predict fields, in the order they are checked
var requiredParams = []string{"hr_mean", "hrv_sdnn", "bmi", "mean_sa02", "gender", "age"}

func (s *Simulator) predict(c *gin.Context) {
	if !s.Model.Loaded() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "model not loaded"})
		return
	}

	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil || data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	for _, p := range requiredParams {
		if _, ok := data[p]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameter: " + p})
			return
		}
	}

	sample, err := parseSample(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed: " + err.Error()})
		return
	}

	temp := s.Model.Predict(sample)
	category := prediction.ClassifyTemperature(temp)

	logging.Info("Prediction served",
		zap.Float64("temperature", temp),
		zap.String("category", category),
	)

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"predicted_temperature": temp,
		"temperature_category":  category,
		"input_data":            data,
	})
}

func parseSample(data map[string]any) (Sample, error) {
	var s Sample
	var err error

	if s.HRMean, err = number(data, "hr_mean"); err != nil {
		return s, err
	}
	if s.HRVSDNN, err = number(data, "hrv_sdnn"); err != nil {
		return s, err
	}
	if s.BMI, err = number(data, "bmi"); err != nil {
		return s, err
	}
	if s.MeanSaO2, err = number(data, "mean_sa02"); err != nil {
		return s, err
	}
	age, err := number(data, "age")
	if err != nil {
		return s, err
	}
	s.Age = int(age)
	s.Gender = fmt.Sprint(data["gender"])
	return s, nil
}

// number accepts JSON numbers and numeric strings
func number(data map[string]any, key string) (float64, error) {
	switch v := data[key].(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: could not convert %q to float", key, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s: expected a number, got %v", key, v)
	}
}

func (s *Simulator) modelInfo(c *gin.Context) {
	if !s.Model.Loaded() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "model not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"model_type":   "simulated linear model",
		"features":     Features,
		"target":       "comfort temperature (°C)",
		"model_loaded": true,
	})
}

func (s *Simulator) state(c *gin.Context) {
	state, err := s.Appliance.State()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":   false,
			"device_id": s.Appliance.ID(),
			"state":     nil,
			"error":     err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"device_id": state.DeviceID,
		"state":     state,
		"error":     nil,
	})
}

func (s *Simulator) control(c *gin.Context) {
	var req aircon.ControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	if err := s.Appliance.Apply(req); err != nil {
		logging.Info("Control command refused",
			zap.String("action", req.Action),
			zap.Error(err),
		)
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"action":  req.Action,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"action":  req.Action,
	})
}
