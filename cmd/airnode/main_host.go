//go:build !rp2040

package main

import (
	"math"
	"os"
	"time"

	"airnode-go/internal/platform"
	"airnode-go/x/fmtx"
)

// Host run: wall time drives the simulated clock and the simulated sensor
// produces a gently wandering reading every interval, so the whole
// firmware can be watched on a terminal without a board on the desk.
func main() {
	a := assemble()
	a.board.TxPort.Tee(os.Stdout)
	fmtx.Fprintf(a.con, "airnode starting (host simulation)\n")
	a.loop.Start()

	start := time.Now()
	var last, nextReading uint64
	co2 := 420.0
	nextReading = (2 + measureIntervalSec) * platform.TicksPerSecond

	for {
		now := uint64(time.Since(start).Microseconds())
		a.board.Clock.Advance(now - last)
		last = now

		if now >= nextReading {
			nextReading += measureIntervalSec * platform.TicksPerSecond
			co2 += 7.5 * math.Sin(float64(now)/3e7)
			a.board.Sensor.SetMeasurement(
				math.Float32bits(float32(co2)),
				math.Float32bits(21.5),
				math.Float32bits(42),
			)
		}

		if !a.loop.Step() {
			time.Sleep(200 * time.Microsecond)
		}
	}
}
