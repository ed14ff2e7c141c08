// Package logging provides structured logging for the poseul client.
//
// This package wraps a zap logger with package-level helpers so that the
// transport, gateways and store can log without threading a logger through
// every constructor.
//
// # Log Levels
//
//   - Debug: request/response exchanges, decoded payloads
//   - Info: operations started and settled, observer connections
//   - Warn: transport failures, server-reported failures
//   - Error: startup failures
//
// # Configuration
//
// Logging is silent unless a level is given explicitly or through
// POSEUL_LOG_LEVEL:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Output goes to stderr so that JSON printed by CLI commands stays clean.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
