//go:build !rp2040

// Package monitor runs the firmware stack on the simulated board and
// bridges its outputs onto the in-process bus. It exists for host-side
// tooling: a test or a dashboard subscribes to the topics below instead
// of scraping the diagnostic console.
//
// Topics:
//
//	airnode/co2    retained history.Entry, one per decoded reading
//	airnode/ir     nec.Message, one per decoded remote frame
//	airnode/fault  retained errcode.Code, published once if the sensor
//	               sequencer parks itself
package monitor

import (
	"time"

	"airnode-go/alarm"
	"airnode-go/bus"
	"airnode-go/console"
	"airnode-go/drivers/nec"
	"airnode-go/errcode"
	"airnode-go/internal/platform"
	"airnode-go/task"
	"airnode-go/tasks/co2meter"
	"airnode-go/tasks/debugprint"
	"airnode-go/tasks/history"
	"airnode-go/tasks/irrecv"
	"airnode-go/tasks/statusled"
)

var (
	TopicCO2   = bus.T("airnode", "co2")
	TopicIR    = bus.T("airnode", "ir")
	TopicFault = bus.T("airnode", "fault")
	TopicCtl   = bus.T("airnode", "ctl")
)

// CmdRestart re-arms the sensor sequencer after a terminal fault. The
// core deliberately never retries on its own; restarting is a
// supervisor's call.
const CmdRestart = "restart"

// Config for the monitor. Zero values get defaults.
type Config struct {
	// AlarmSlots sizes the shared timer queue. Default 16.
	AlarmSlots int
	// HistoryDepth bounds the retained readings. Default 32.
	HistoryDepth int
	// IntervalSeconds between sensor-side measurements. Default 2.
	IntervalSeconds uint16
	// BootTicks before the first sensor command. Default 2 s of ticks.
	BootTicks uint64
}

// Service owns one simulated board and the tasks running on it.
type Service struct {
	b     *bus.Bus
	board *platform.Board
	q     *alarm.Queue
	loop  *task.Loop
	meter *co2meter.Task
	hist  *history.Task
	con   *console.Console
	ctl   *bus.Subscription

	faulted bool
}

// New assembles the stack. Nothing runs until Start.
func New(b *bus.Bus, cfg Config) *Service {
	if cfg.AlarmSlots <= 0 {
		cfg.AlarmSlots = 16
	}
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = 32
	}
	if cfg.IntervalSeconds == 0 {
		cfg.IntervalSeconds = 2
	}
	if cfg.BootTicks == 0 {
		cfg.BootTicks = 2 * platform.TicksPerSecond
	}

	board := platform.NewBoard()
	q := alarm.New(board.Clock, board.TimerMbx, cfg.AlarmSlots)

	con := console.New(board.TxPort, board.ConsoleMbx, console.Config{
		TimeoutTicks: platform.TicksPerSecond / 1000,
	})
	hist := history.New(con, history.Config{
		Depth: cfg.HistoryDepth,
		Publish: func(e history.Entry) {
			b.Publish(TopicCO2, e, true)
		},
	})
	meter := co2meter.New(board.Engine, board.I2CMbx, board.GPIOMbx, hist, con, co2meter.Config{
		BootTicks:       cfg.BootTicks,
		IntervalSeconds: cfg.IntervalSeconds,
		ReadyBit:        platform.SensorReadyBit,
	})
	led := statusled.New(board.LED, con, statusled.Config{
		BlinkTicks: platform.TicksPerSecond / 10,
	})
	ir := irrecv.New(board.Capture, board.IRMbx, con, func(m nec.Message) {
		b.Publish(TopicIR, m, false)
	}, irrecv.Config{
		FrameBit:   platform.IRFrameBit,
		OverrunBit: platform.IROverrunBit,
	})
	dbg := debugprint.New(con, debugprint.Config{
		PeriodTicks: 10 * platform.TicksPerSecond,
	})

	loop := task.NewLoop(q, board.Mask, task.Config{
		Diag:      con,
		Mailboxes: board.Mailboxes(),
		OnWake:    dbg.Wakeup,
	}, con, led, meter, ir, hist, dbg)

	return &Service{
		b:     b,
		board: board,
		q:     q,
		loop:  loop,
		meter: meter,
		hist:  hist,
		con:   con,
		ctl:   b.Subscribe(TopicCtl),
	}
}

// Board exposes the simulation so callers can stage readings and frames.
func (s *Service) Board() *platform.Board { return s.board }

// Latest returns the newest retained reading, if any.
func (s *Service) Latest() (history.Entry, bool) { return s.hist.Latest() }

// Start arms every task.
func (s *Service) Start() { s.loop.Start() }

// Step advances simulated time by delta ticks and drains the loop until
// it settles. A terminal sensor fault is published once, retained, and
// stays up until a restart command clears it.
func (s *Service) Step(delta uint64) {
	s.drainControl()
	s.board.Clock.Advance(delta)
	for s.loop.Step() {
	}
	if s.meter.Failed() && !s.faulted {
		s.faulted = true
		s.b.Publish(TopicFault, errcode.Map(s.meter.Err()), true)
	}
}

func (s *Service) drainControl() {
	for {
		select {
		case m := <-s.ctl.Channel():
			if cmd, ok := m.Payload.(string); ok && cmd == CmdRestart && s.meter.Failed() {
				s.meter.Start(s.q)
				s.faulted = false
				s.b.Publish(TopicFault, nil, true)
			}
		default:
			return
		}
	}
}

// Run steps in wall-clock time until stop is closed.
func (s *Service) Run(stop <-chan struct{}) {
	last := time.Now()
	for {
		select {
		case <-stop:
			return
		default:
		}
		now := time.Now()
		s.Step(uint64(now.Sub(last).Microseconds()))
		last = now
		time.Sleep(200 * time.Microsecond)
	}
}
