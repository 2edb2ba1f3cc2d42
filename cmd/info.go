/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	rs485 "github.com/allbin/go-rs485"
	"github.com/allbin/go-rs485/internal/ports"
	"github.com/allbin/go-rs485/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [port]",
	Short: "Show a port and the link settings that would be applied",
	Long: `Show what is known about a serial device together with the line
settings and direction pin resolved from flags, environment and config file.
Nothing is opened, so this is safe to run while another process owns the bus.

Examples:
  rs485 info /dev/ttyUSB0
  RS485_PIN=rpi:18 rs485 info /dev/ttyAMA0`,
	Args: cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		device, err := portArg(args, viper.GetString("port"))
		if err != nil {
			return err
		}

		info, err := ports.Lookup(device)
		if err != nil {
			return fmt.Errorf("%s: %w", device, err)
		}

		s := loadSettings()
		opts, err := s.options()
		if err != nil {
			return err
		}
		config, err := rs485.DefaultConfig().Apply(opts...)
		if err != nil {
			return err
		}
		spec, err := parsePinSpec(s.Pin)
		if err != nil {
			return err
		}

		renderInfo(os.Stdout, info, config, spec, s)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func renderInfo(w io.Writer, info *ports.Info, config rs485.Config, spec pinSpec, s settings) {
	fmt.Fprintf(w, "%s\n\n", styles.InfoStyle.Render("Port "+info.Path))
	fmt.Fprintf(w, "  Name:         %s\n", info.Name)
	fmt.Fprintf(w, "  Description:  %s\n", info.Description)

	if info.USB {
		fmt.Fprintln(w, "\nUSB device:")
		fmt.Fprintf(w, "  Vendor ID:    %s\n", info.VendorID)
		fmt.Fprintf(w, "  Product ID:   %s\n", info.ProductID)
		if info.SerialNumber != "" {
			fmt.Fprintf(w, "  Serial:       %s\n", info.SerialNumber)
		}
		if info.Product != "" {
			fmt.Fprintf(w, "  Product:      %s\n", info.Product)
		}
	}

	polarity := "active high"
	if s.ActiveLow {
		polarity = "active low"
	}
	fmt.Fprintln(w, "\nLink:")
	fmt.Fprintf(w, "  Line:         %s\n", describeConfig(config))
	fmt.Fprintf(w, "  Read timeout: %s\n", config.ReadTimeout)
	fmt.Fprintf(w, "  Driver:       %s\n", s.Driver)
	fmt.Fprintf(w, "  Pin:          %s (%s)\n", spec, polarity)
}
