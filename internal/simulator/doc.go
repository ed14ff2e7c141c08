// Package simulator is a stand-in for the poseul backend: the model
// server's /health, /predict and /model_info endpoints and the ThinQ
// bridge's /air_conditioner endpoints, served by gin.
//
// The appliance behaves like the real one where it matters to clients:
// target temperatures are rounded to half a degree and clamped to the
// supported range, so the value read back after a command may differ
// from the value sent. The prediction model is a small deterministic
// formula over the same features the trained model uses.
//
// Control commands are rate limited per client address. The simulator
// can announce itself over mDNS so clients can find it with
// `poseul discover`.
package simulator
