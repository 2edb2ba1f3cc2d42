/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/allbin/go-rs485/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// pinCmd represents the pin command
var pinCmd = &cobra.Command{
	Use:   "pin [port] <state>",
	Short: "Drive the direction pin by hand",
	Long: `Set the transceiver direction pin directly, for example to release a bus
held by a transceiver stuck in transmit mode, or to check the wiring with a
meter. --active-low is honoured, so "tx" always means driver enabled.

The tty driver may reset RTS when the port is closed; use --hold to keep
the state until Ctrl+C.

Examples:
  rs485 pin /dev/ttyUSB0 rx
  rs485 pin /dev/ttyS1 tx --pin sysfs:17 --hold

Valid states: tx, rx, high, low, on, off, true, false, 1, 0`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var device, stateArg string
		if len(args) == 2 {
			device, stateArg = args[0], args[1]
		} else {
			var err error
			if device, err = portArg(nil, viper.GetString("port")); err != nil {
				return err
			}
			stateArg = args[0]
		}

		transmit, err := parsePinState(stateArg)
		if err != nil {
			return err
		}
		hold, _ := cmd.Flags().GetBool("hold")

		s := loadSettings()
		spec, err := parsePinSpec(s.Pin)
		if err != nil {
			return err
		}

		port, err := openTransport(device, s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n", styles.ErrorStyle.Render("✗"), describeError(err))
			return err
		}
		defer port.Close()

		pin, closer, err := openPin(spec, s.ActiveLow, port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n", styles.ErrorStyle.Render("✗"), describeError(err))
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		if transmit {
			err = pin.SetHigh()
		} else {
			err = pin.SetLow()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s Error setting pin: %v\n", styles.ErrorStyle.Render("✗"), err)
			return err
		}
		logger.Info("direction pin set", "device", device, "pin", spec.String(), "transmit", transmit)

		fmt.Printf("%s Pin %s set to %s on %s\n",
			styles.SuccessStyle.Render("✓"), spec, formatPinState(transmit), device)

		if hold {
			fmt.Println(styles.MutedStyle.Render("Holding, Ctrl+C to release"))
			<-cmd.Context().Done()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)

	pinCmd.Flags().Bool("hold", false, "Keep the port open and the pin set until interrupted")
}

// parsePinState returns true for the transmit (driver enabled) state
func parsePinState(state string) (bool, error) {
	switch strings.ToLower(state) {
	case "tx", "high", "on", "true", "1":
		return true, nil
	case "rx", "low", "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state: %s (valid: tx, rx, high, low, on, off, true, false, 1, 0)", state)
	}
}

func formatPinState(transmit bool) string {
	if transmit {
		return styles.TXStyle.Render("TX (driver enabled)")
	}
	return styles.RXStyle.Render("RX (receiver enabled)")
}
