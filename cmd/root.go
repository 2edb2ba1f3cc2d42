/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	cfgFile string
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rs485",
	Short: "Talk to devices on a half-duplex RS-485 bus",
	Long: `rs485 drives a half-duplex RS-485 transceiver through a serial port and a
direction pin. The pin is raised for every transmission and lowered again
once the last byte has left the UART, so the bus is released for replies.

Settings are read from flags, RS485_* environment variables and a config
file ($HOME/.rs485.yaml by default), in that order of precedence.

Example usage:
  rs485 send "01 03 00 00 00 02 C4 0B" /dev/ttyUSB0 --hex --reply 9
  rs485 listen /dev/ttyS1 --baud 9600 --pin sysfs:17
  rs485 connect /dev/ttyAMA0 --pin rpi:18 --active-low`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Ctrl+C cancels the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.rs485.yaml)")
	flags.IntP("baud", "b", 115200, "Baud rate")
	flags.Int("data-bits", 8, "Data bits (5-8)")
	flags.Int("stop-bits", 1, "Stop bits (1 or 2)")
	flags.String("parity", "none", "Parity: none, odd, even, mark, space")
	flags.Duration("read-timeout", defaultReadTimeout, "Read timeout, in 100ms steps up to 25.5s")
	flags.String("driver", "native", "Serial driver: native (termios) or bugst (go.bug.st/serial)")
	flags.StringP("pin", "p", "rts", "Direction pin: rts, rpi:<gpio> or sysfs:<gpio>")
	flags.Bool("active-low", false, "Direction pin enables the driver when low")
	flags.Bool("sync-writes", false, "Open the port with O_SYNC (native driver only)")
	flags.String("log-file", "", "Write logs to this file (rotated)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	for _, name := range []string{
		"baud", "data-bits", "stop-bits", "parity", "read-timeout",
		"driver", "pin", "active-low", "sync-writes", "log-file", "verbose",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rs485")
	}

	viper.SetEnvPrefix("RS485")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}

// setupLogging routes slog to stderr, or to a rotated file when --log-file
// is set. Without --verbose only warnings and errors are logged to stderr.
func setupLogging() error {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	if path := viper.GetString("log-file"); path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		if level > slog.LevelInfo {
			level = slog.LevelInfo
		}
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	if f := viper.ConfigFileUsed(); f != "" {
		logger.Debug("using config file", "path", f)
	}
	return nil
}
