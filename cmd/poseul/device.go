package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiservice/poseul/internal/aircon"
	"github.com/aiservice/poseul/internal/store"
)

func init() {
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(setTempCmd)
	rootCmd.AddCommand(setModeCmd)
	rootCmd.AddCommand(setFanCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(toggleCmd)
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the air conditioner state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDevice(cmd, "Air conditioner state", (*store.Store).Refresh)
	},
}

var setTempCmd = &cobra.Command{
	Use:   "set-temp <value> [C|F]",
	Short: "Set the target temperature",
	Long: `Set the target temperature of the air conditioner.

The unit defaults to Celsius. The state is read back afterwards, so the
output shows the value the device actually accepted.`,
	Example: `  poseul set-temp 24
  poseul set-temp 75 F`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid temperature %q", args[0])
		}
		unitArg := ""
		if len(args) == 2 {
			unitArg = args[1]
		}
		unit, err := aircon.ParseUnit(unitArg)
		if err != nil {
			return err
		}
		return runDevice(cmd, "Set temperature", func(s *store.Store) {
			s.SetTemperature(value, unit)
		})
	},
}

var setModeCmd = &cobra.Command{
	Use:   "set-mode <mode>",
	Short: "Set the operating mode (COOL, AIR_DRY, AIR_CLEAN, AUTO)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := aircon.ParseMode(args[0])
		if err != nil {
			return err
		}
		return runDevice(cmd, "Set mode", func(s *store.Store) {
			s.SetMode(mode)
		})
	},
}

var setFanCmd = &cobra.Command{
	Use:   "set-fan <speed>",
	Short: "Set the fan speed (HIGH, MID, LOW, AUTO)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		speed, err := aircon.ParseFanSpeed(args[0])
		if err != nil {
			return err
		}
		return runDevice(cmd, "Set fan speed", func(s *store.Store) {
			s.SetFanSpeed(speed)
		})
	},
}

var powerCmd = &cobra.Command{
	Use:       "power <on|off>",
	Short:     "Turn the air conditioner on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch strings.ToLower(args[0]) {
		case "on":
			on = true
		case "off":
			on = false
		default:
			return fmt.Errorf("invalid power state %q (valid: on, off)", args[0])
		}
		return runDevice(cmd, "Set power", func(s *store.Store) {
			s.SetPower(on)
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip the power state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDevice(cmd, "Toggle power", (*store.Store).TogglePower)
	},
}

// runDevice starts op on a fresh store, waits for it to settle and
// prints the device facet.
func runDevice(cmd *cobra.Command, title string, op func(*store.Store)) error {
	b := connect()
	s := b.store()
	op(s)
	s.Wait()

	snap := s.Device().Snapshot()
	return printDevice(cmd.OutOrStdout(), title, b.url, snap, deviceTips(snap.Err))
}

// deviceTips suggests next steps for a failed device facet
func deviceTips(msg string) []string {
	switch {
	case msg == "":
		return nil
	case strings.Contains(msg, "offline"):
		return []string{
			"The backend is reachable but cannot talk to the air conditioner",
			"Check that the unit is powered and connected",
		}
	default:
		return []string{
			"Run 'poseul health' to check the backend",
			"Verify the server URL (--server or POSEUL_SERVER_URL)",
		}
	}
}
