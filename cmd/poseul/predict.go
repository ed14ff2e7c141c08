package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/aiservice/poseul/internal/prediction"
	"github.com/aiservice/poseul/internal/transport"
	"github.com/aiservice/poseul/internal/ui"
)

// Prediction command flags
var (
	heartRate int
	hrvSDNN   float64
	bmi       float64
	meanSaO2  float64
	gender    string
	age       int
)

func init() {
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(modelInfoCmd)

	f := predictCmd.Flags()
	f.IntVar(&heartRate, "hr", 0, "Mean heart rate in bpm")
	f.Float64Var(&hrvSDNN, "hrv", 0, "Heart rate variability (SDNN) in ms")
	f.Float64Var(&bmi, "bmi", 0, "Body mass index")
	f.Float64Var(&meanSaO2, "spo2", 0, "Mean blood oxygen saturation in percent")
	f.StringVar(&gender, "gender", "", "Gender (male, female)")
	f.IntVar(&age, "age", 0, "Age in years")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a comfortable temperature",
	Long: `Ask the backend for a comfort temperature.

The sample starts from the profile in the config file; any flag given
replaces the matching profile value. The backend health is checked first
and no prediction is requested when it has no model loaded.`,
	Example: `  # Predict from the configured profile
  poseul predict

  # Override part of the profile
  poseul predict --hr 92 --gender female

  # JSON output for scripting
  poseul predict --format json`,
	RunE: runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	in := profileInput(cmd)

	b := connect()
	s := b.store()
	s.Predict(in)
	s.Wait()

	snap := s.Prediction().Snapshot()
	r := prediction.Failure(snap.Err)
	if snap.Data != nil {
		r = *snap.Data
	}
	return printPrediction(cmd.OutOrStdout(), b.url, in, r)
}

// profileInput returns the configured profile with changed flags applied
func profileInput(cmd *cobra.Command) prediction.Input {
	in := cfg.Profile.Input()
	f := cmd.Flags()
	if f.Changed("hr") {
		in.HeartRate = heartRate
	}
	if f.Changed("hrv") {
		in.HRVSDNN = hrvSDNN
	}
	if f.Changed("bmi") {
		in.BMI = bmi
	}
	if f.Changed("spo2") {
		in.MeanSaO2 = meanSaO2
	}
	if f.Changed("gender") {
		in.Gender = gender
	}
	if f.Changed("age") {
		in.Age = age
	}
	return in
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backend and its model",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := connect()
		health, err := b.predictor.CheckHealth(context.Background())

		if outputFormat == formatJSON {
			out := map[string]any{"server": b.url, "reachable": health != nil}
			if health != nil {
				out["status"] = health.Status
				out["model_loaded"] = health.Ready()
			}
			if err != nil {
				out["error"] = err.Error()
			}
			if jerr := printJSON(cmd.OutOrStdout(), out); jerr != nil {
				return jerr
			}
			if err != nil {
				return errReported
			}
			return nil
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("Backend health", ui.Detail{Key: "Server", Value: b.url})

		switch {
		case errors.Is(err, prediction.ErrModelNotReady):
			p.PrintWarning("Model not ready", "The backend is up but reports no model loaded.")
			return errReported
		case err != nil:
			p.PrintError("Backend unreachable", transport.ShortMessage(err), transport.TroubleshootingHint(err))
			return errReported
		}

		p.PrintSuccess("Backend healthy",
			ui.Detail{Key: "Status", Value: health.Status},
			ui.Detail{Key: "Model", Value: "loaded"},
		)
		return nil
	},
}

var modelInfoCmd = &cobra.Command{
	Use:   "model-info",
	Short: "Show the model description reported by the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := connect()
		info, err := b.predictor.ModelInfo(context.Background())

		if outputFormat == formatJSON {
			out := map[string]any{"success": err == nil}
			if err != nil {
				out["error"] = err.Error()
			} else {
				out["model_info"] = info
			}
			if jerr := printJSON(cmd.OutOrStdout(), out); jerr != nil {
				return jerr
			}
			if err != nil {
				return errReported
			}
			return nil
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("Model information", ui.Detail{Key: "Server", Value: b.url})
		if err != nil {
			p.PrintError("Model information unavailable", err.Error(), transport.TroubleshootingHint(err))
			return errReported
		}
		p.Println(info)
		return nil
	},
}
