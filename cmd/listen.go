/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/allbin/go-rs485/internal/bus"
	"github.com/allbin/go-rs485/internal/payload"
	"github.com/allbin/go-rs485/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen [port]",
	Short: "Print traffic received on the bus",
	Long: `Keep the transceiver in receive mode and print every chunk of data that
arrives, with a timestamp, hex dump and printable ASCII, until Ctrl+C.

Example usage:
  rs485 listen /dev/ttyUSB0
  rs485 listen /dev/ttyS1 --baud 9600 --parity even --pin sysfs:17
  rs485 listen /dev/ttyUSB0 --raw > capture.bin`,
	Args: cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		device, err := portArg(args, viper.GetString("port"))
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetBool("raw")
		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")

		return listen(cmd.Context(), device, frameFormat{raw: raw, timestamps: !noTimestamps}, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().Bool("raw", false, "Write received bytes unmodified to stdout")
	listenCmd.Flags().Bool("no-timestamps", false, "Hide timestamps from output")
}

// portArg picks the device from the arguments or the configuration
func portArg(args []string, configured string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if configured == "" {
		return "", errors.New("no port given (pass it as an argument or set RS485_PORT)")
	}
	return configured, nil
}

type frameFormat struct {
	raw        bool
	timestamps bool
}

// format renders a frame as one line. Raw output is the received bytes.
func (f frameFormat) format(frame bus.Frame) []byte {
	if f.raw {
		if frame.Err != nil || frame.Dir != bus.RX {
			return nil
		}
		return frame.Data
	}

	var sb strings.Builder
	if f.timestamps {
		sb.WriteString(styles.MutedStyle.Render("[" + frame.Time.Format("15:04:05.000") + "]"))
		sb.WriteByte(' ')
	}
	sb.WriteString(styles.Direction(frame.Dir == bus.TX))
	sb.WriteString("  ")

	if frame.Err != nil {
		sb.WriteString(styles.ErrorStyle.Render("✗ " + describeError(frame.Err)))
	} else {
		fmt.Fprintf(&sb, "%s  %s", payload.Hex(frame.Data), styles.MutedStyle.Render(payload.Printable(frame.Data)))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

func listen(ctx context.Context, device string, format frameFormat, out io.Writer) error {
	l, err := openLink(device, loadSettings())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", styles.ErrorStyle.Render("✗"), describeError(err))
		return err
	}
	defer l.Close()

	if !format.raw {
		fmt.Fprintf(os.Stderr, "%s Listening on %s, %s, pin %s (Ctrl+C to stop)\n",
			styles.SuccessStyle.Render("✓"), device, describeConfig(l.config), l.pin)
	}

	session := bus.New(l, bus.WithLogger(logger))
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	for frame := range session.Frames() {
		if _, err := out.Write(format.format(frame)); err != nil {
			return err
		}
	}

	err = <-done
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", styles.ErrorStyle.Render("✗"), describeError(err))
	}
	return err
}
