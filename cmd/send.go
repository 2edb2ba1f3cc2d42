/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	rs485 "github.com/allbin/go-rs485"
	"github.com/allbin/go-rs485/internal/bus"
	"github.com/allbin/go-rs485/internal/payload"
	"github.com/allbin/go-rs485/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] [port]",
	Short: "Transmit data on the bus and optionally wait for a reply",
	Long: `Transmit data on the bus. The direction pin is raised, the data written,
the UART drained and the pin lowered again before any reply is read.

Data can be provided as:
- Command line argument: rs485 send "Hello" /dev/ttyUSB0
- From stdin (pipe): echo "test" | rs485 send /dev/ttyUSB0
- Interactive prompt: rs485 send /dev/ttyUSB0

When the port is configured (RS485_PORT or "port" in the config file) it
may be omitted and a single argument is taken as the data.

Example usage:
  rs485 send "01 03 00 00 00 02 C4 0B" /dev/ttyUSB0 --hex --reply 9
  rs485 send "AT" /dev/ttyS1 --newline --reply 4 --timeout 2s`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, device, err := sendArgs(args, viper.GetString("port"))
		if err != nil {
			return err
		}

		hexMode, _ := cmd.Flags().GetBool("hex")
		newline, _ := cmd.Flags().GetBool("newline")
		reply, _ := cmd.Flags().GetInt("reply")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if input == nil {
			text, err := readInput(os.Stdin)
			if err != nil {
				return err
			}
			input = &text
		}

		data, err := payload.Encode(*input, hexMode, newline && !hexMode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s Invalid data: %v\n", styles.ErrorStyle.Render("✗"), err)
			return err
		}

		return sendData(cmd.Context(), device, data, reply, timeout)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g. '01 03 00 00')")
	sendCmd.Flags().IntP("reply", "r", 0, "Number of reply bytes to wait for after sending")
	sendCmd.Flags().DurationP("timeout", "t", 2*time.Second, "How long to wait for the transmission and reply")
}

// sendArgs splits positional arguments into data and device. A nil data
// pointer means the data comes from stdin or a prompt.
func sendArgs(args []string, configured string) (*string, string, error) {
	switch len(args) {
	case 2:
		return &args[0], args[1], nil
	case 1:
		if configured != "" {
			return &args[0], configured, nil
		}
		return nil, args[0], nil
	default:
		if configured == "" {
			return nil, "", errors.New("no port given (pass it as an argument or set RS485_PORT)")
		}
		return nil, configured, nil
	}
}

// readInput takes piped stdin, or prompts when stdin is a terminal
func readInput(stdin *os.File) (string, error) {
	stat, err := stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		fmt.Print(styles.InfoStyle.Render("Enter data to send: "))
		scanner := bufio.NewScanner(stdin)
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		return "", scanner.Err()
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("error reading from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func sendData(ctx context.Context, device string, data []byte, reply int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fmt.Printf("%s Opening %s...\n", styles.InfoStyle.Render("⚡"), device)

	l, err := openLink(device, loadSettings())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", styles.ErrorStyle.Render("✗"), describeError(err))
		return err
	}
	defer l.Close()

	fmt.Printf("%s Connected, %s, pin %s\n", styles.SuccessStyle.Render("✓"), describeConfig(l.config), l.pin)

	session := bus.New(l, bus.WithLogger(logger))
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- session.Run(runCtx) }()
	// The session must be off the bus before the link is released.
	defer func() {
		stop()
		<-done
	}()

	fmt.Printf("%s Sending %d bytes...\n", styles.InfoStyle.Render("📤"), len(data))

	n, err := session.Send(ctx, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Sent %d of %d bytes: %s\n",
			styles.ErrorStyle.Render("✗"), n, len(data), describeError(err))
		return err
	}
	fmt.Printf("%s Sent %d bytes: %s\n", styles.SuccessStyle.Render("✓"), n, payload.Hex(data))

	if reply <= 0 {
		return nil
	}

	received, err := collectReply(ctx, session.Frames(), reply)
	if len(received) > 0 {
		fmt.Printf("%s Received %d bytes: %s  %s\n",
			styles.RXStyle.Render("📥"), len(received), payload.Hex(received),
			styles.MutedStyle.Render(payload.Printable(received)))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", styles.WarningStyle.Render("⚠"), describeError(err))
		return err
	}
	return nil
}

// collectReply gathers received bytes until want bytes arrived, the
// session ends, or ctx expires.
func collectReply(ctx context.Context, frames <-chan bus.Frame, want int) ([]byte, error) {
	var received []byte
	for len(received) < want {
		select {
		case <-ctx.Done():
			return received, fmt.Errorf("received %d of %d reply bytes: %w", len(received), want, ctx.Err())
		case f, ok := <-frames:
			if !ok {
				return received, fmt.Errorf("received %d of %d reply bytes: %w", len(received), want, rs485.ErrPortClosed)
			}
			if f.Dir != bus.RX {
				continue
			}
			if f.Err != nil {
				return received, f.Err
			}
			received = append(received, f.Data...)
		}
	}
	return received, nil
}

// describeError adds the failing side and error kind for transceiver errors
func describeError(err error) string {
	var rerr *rs485.Error
	if errors.As(err, &rerr) {
		return fmt.Sprintf("%v [%s, %s]", err, rerr.Origin, rerr.Kind())
	}
	if kind := rs485.KindOf(err); kind != rs485.KindOther {
		return fmt.Sprintf("%v [%s]", err, kind)
	}
	return err.Error()
}
