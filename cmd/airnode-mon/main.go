// airnode-mon tails a unit's diagnostic UART from a workstation,
// timestamping each line. Point it at whatever USB-serial adapter the
// board's console pins are wired to.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tarm/serial"
)

func main() {
	dev := flag.String("dev", "/dev/ttyUSB0", "serial device the console is wired to")
	baud := flag.Int("baud", 115200, "baud rate")
	raw := flag.Bool("raw", false, "relay bytes without timestamps")
	flag.Parse()

	port, err := serial.OpenPort(&serial.Config{Name: *dev, Baud: *baud})
	if err != nil {
		fmt.Fprintf(os.Stderr, "airnode-mon: open %s: %v\n", *dev, err)
		os.Exit(1)
	}
	defer port.Close()

	if *raw {
		buf := make([]byte, 4096)
		for {
			n, err := port.Read(buf)
			if n > 0 {
				os.Stdout.Write(buf[:n])
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "airnode-mon: read: %v\n", err)
				os.Exit(1)
			}
		}
	}

	sc := bufio.NewScanner(port)
	for sc.Scan() {
		fmt.Printf("%s %s\n", time.Now().Format("15:04:05.000"), sc.Text())
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "airnode-mon: read: %v\n", err)
		os.Exit(1)
	}
}
