// Package gpio provides rs485.Pin implementations backed by GPIO lines, for
// transceivers whose driver enable input is wired to a general purpose pin
// instead of the UART's RTS line.
//
// OpenRPi drives a Raspberry Pi header pin through go-rpio's register
// mapping. OpenSysfs works on any Linux board with the legacy sysfs GPIO
// interface.
//
//	pin, err := gpio.OpenSysfs(17)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pin.Close()
//
//	bus := rs485.New(port, pin)
package gpio
