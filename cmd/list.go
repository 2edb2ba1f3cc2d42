/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/allbin/go-rs485/internal/ports"
	"github.com/allbin/go-rs485/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List UARTs that can drive a transceiver",
	Long: `List the serial devices on this machine that can carry an RS-485
transceiver: USB adapters (ttyUSB*, ttyACM*), 16550 ports (ttyS*) and SoC
UARTs such as the Raspberry Pi PL011 (ttyAMA*).

Virtual terminals and pseudo-terminals are excluded. The port configured
with --port or RS485_PORT is marked with an asterisk.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := ports.List()
		if err != nil {
			return fmt.Errorf("listing ports: %w", err)
		}

		filter, _ := cmd.Flags().GetString("filter")
		infos, err := filterPorts(ports.Describe(paths), filter)
		if err != nil {
			return err
		}

		table, _ := cmd.Flags().GetBool("table")
		if table {
			renderTable(os.Stdout, infos, viper.GetString("port"))
		} else {
			renderSimple(os.Stdout, infos)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port class: usb, standard, soc, all")
	listCmd.Flags().BoolP("table", "t", false, "Show a table with USB details")
}

func filterPorts(infos []ports.Info, filter string) ([]ports.Info, error) {
	filter = strings.ToLower(filter)
	if filter == "" || filter == "all" {
		return infos, nil
	}

	var class ports.Class
	switch filter {
	case "usb":
		class = ports.ClassUSB
	case "standard":
		class = ports.ClassStandard
	case "soc", "arm":
		class = ports.ClassSoC
	default:
		return nil, fmt.Errorf("invalid filter: %s (valid: usb, standard, soc, all)", filter)
	}

	var filtered []ports.Info
	for _, info := range infos {
		if info.Class == class {
			filtered = append(filtered, info)
		}
	}
	return filtered, nil
}

func usbID(info ports.Info) string {
	if !info.USB {
		return "-"
	}
	return info.VendorID + ":" + info.ProductID
}

func renderTable(w io.Writer, infos []ports.Info, configured string) {
	if len(infos) == 0 {
		fmt.Fprintln(w, styles.MutedStyle.Render("No serial ports found"))
		return
	}
	fmt.Fprintf(w, "Found %d serial port(s):\n\n", len(infos))

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.InfoStyle.GetForeground()).
		Border(lipgloss.NormalBorder(), false, false, true, false)

	fmt.Fprintln(w, header.Render(fmt.Sprintf("  %-14s %-20s %-10s %s", "Port", "Type", "USB ID", "Product")))
	for _, info := range infos {
		marker := " "
		if info.Path == configured {
			marker = styles.SuccessStyle.Render("*")
		}
		product := info.Product
		if product == "" {
			product = styles.MutedStyle.Render("-")
		}
		fmt.Fprintf(w, "%s %-14s %-20s %-10s %s\n", marker, info.Name, info.Description, usbID(info), product)
	}
}

func renderSimple(w io.Writer, infos []ports.Info) {
	for _, info := range infos {
		fmt.Fprintln(w, info.Path)
	}
}
