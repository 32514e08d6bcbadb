package main

import (
	"airnode-go/alarm"
	"airnode-go/console"
	"airnode-go/internal/platform"
	"airnode-go/task"
	"airnode-go/tasks/co2meter"
	"airnode-go/tasks/debugprint"
	"airnode-go/tasks/history"
	"airnode-go/tasks/irrecv"
	"airnode-go/tasks/statusled"
)

// ---------- Configuration ----------

const (
	alarmSlots = 16

	// Sensor
	measureIntervalSec = 2
	pressureMbar       = 0 // compensation off

	// Console
	consoleBufBytes = 4096
)

type app struct {
	board *platform.Board
	q     *alarm.Queue
	con   *console.Console
	hist  *history.Task
	loop  *task.Loop
}

// assemble wires every task onto the board. Identical on hardware and on
// the host simulation; only the board construction differs per build.
func assemble() *app {
	b := platform.NewBoard()
	q := alarm.New(b.Clock, b.TimerMbx, alarmSlots)

	con := console.New(b.TxPort, b.ConsoleMbx, console.Config{
		BufSize:      consoleBufBytes,
		TimeoutTicks: platform.TicksPerSecond / 1000, // 1 ms
	})
	hist := history.New(con, history.Config{Depth: 32})
	meter := co2meter.New(b.Engine, b.I2CMbx, b.GPIOMbx, hist, con, co2meter.Config{
		BootTicks:       2 * platform.TicksPerSecond,
		IntervalSeconds: measureIntervalSec,
		PressureMbar:    pressureMbar,
		SettleTicks:     3 * platform.TicksPerSecond / 1000, // 3 ms
		ReadyBit:        platform.SensorReadyBit,
	})
	led := statusled.New(b.LED, con, statusled.Config{
		Blinks:     3,
		BlinkTicks: platform.TicksPerSecond / 10,
	})
	ir := irrecv.New(b.Capture, b.IRMbx, con, nil, irrecv.Config{
		FrameBit:   platform.IRFrameBit,
		OverrunBit: platform.IROverrunBit,
	})
	dbg := debugprint.New(con, debugprint.Config{
		PeriodTicks: 10 * platform.TicksPerSecond,
	})

	loop := task.NewLoop(q, b.Mask, task.Config{
		Diag:      con,
		Mailboxes: b.Mailboxes(),
		OnWake:    dbg.Wakeup,
	}, con, led, meter, ir, hist, dbg)

	return &app{board: b, q: q, con: con, hist: hist, loop: loop}
}
