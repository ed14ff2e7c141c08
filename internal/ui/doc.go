// Package ui renders the one-shot output of poseul commands.
//
// Commands print a short header naming the operation and backend, then a
// single result box:
//
//   - Success: green double border with ordered key/value details
//   - Failure: red double border with the error and troubleshooting tips
//   - Warning: amber double border, used when a call worked but the
//     answer is not usable (model not loaded, device offline)
//
// Widths follow the terminal (via x/term) and are clamped so boxes stay
// readable on narrow and very wide terminals. When stdout is not a
// terminal the minimum width is used.
//
// Logging is controlled separately via POSEUL_LOG_LEVEL and goes to
// stderr, so it never interleaves with the boxes on stdout.
package ui
