// Package config manages the poseul client configuration.
//
// Settings live in a YAML file that follows OS conventions:
//   - Linux: $XDG_CONFIG_HOME/poseul/config.yaml or $HOME/.config/poseul/config.yaml
//   - macOS: $HOME/.config/poseul/config.yaml
//   - Windows: %LOCALAPPDATA%\poseul\config.yaml
//
// A .env file in the working directory is read on Load, and environment
// variables override the file:
//
//	POSEUL_SERVER_URL      backend base URL
//	POSEUL_HEALTH_TIMEOUT  health check timeout (Go duration)
//	POSEUL_PREDICT_TIMEOUT prediction timeout
//	POSEUL_STATE_TIMEOUT   state read timeout
//	POSEUL_CONTROL_TIMEOUT control command timeout
//
// Command line flags take precedence over both.
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := transport.NewClient(cfg.ResolveServerURL(flagServer))
//
//	cfg.RememberBackend("poseul-sim", "http://192.168.0.12:5000")
//	if err := cfg.Save(); err != nil {
//	    log.Fatal(err)
//	}
package config
