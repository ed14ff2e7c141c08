// Package tui implements the interactive terminal screens of poseul.
//
// The dashboard renders the two observable facets of a store.Store, the
// air conditioner state and the last comfort prediction, and maps key
// presses onto store intents:
//
//	p        predict from the configured profile
//	r        refresh the device state
//	space/o  toggle power
//	+ / -    raise or lower the setpoint
//	m / f    cycle mode / fan speed
//	?        show all keys
//	q        quit
//
// Store operations return immediately; the dashboard learns about their
// progress through facet subscriptions, which wake the Bubble Tea loop
// through a one-slot channel.
//
// The picker scans the local network for backends announcing
// _poseul._tcp and returns the one the user selects.
package tui
