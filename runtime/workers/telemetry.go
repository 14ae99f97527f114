package workers

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"time"

	"github.com/shirou/gopsutil/process"
)

type NamedChannel struct {
	Name    string
	Channel any
}

type ChannelFill struct {
	Name     string
	Length   int
	Capacity int
}

// Snapshot is one telemetry sample.
type Snapshot struct {
	Channels    []ChannelFill
	Connections int
	RSS         uint64
	CPUPercent  float64
}

// TelemetryWorker periodically logs channel fill levels, the number of live
// connections and the memory and cpu used by the process.
// Reading len and cap of a channel never blocks.
type TelemetryWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	connections    func() int
	metricInterval time.Duration
	pid            int32
}

func NewTelemetryWorker(log *slog.Logger,
	metricInterval time.Duration,
	connections func() int,
	channels ...NamedChannel) *TelemetryWorker {
	return &TelemetryWorker{
		log:            log,
		channels:       channels,
		connections:    connections,
		metricInterval: metricInterval,
		pid:            int32(os.Getpid()),
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			w.report(w.Sample())
		}
	}
}

// Sample reads the current values. Process metrics that cannot be read are left at zero.
func (w *TelemetryWorker) Sample() Snapshot {
	snapshot := Snapshot{}
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		snapshot.Channels = append(snapshot.Channels, ChannelFill{Name: nc.Name, Length: v.Len(), Capacity: v.Cap()})
	}
	if w.connections != nil {
		snapshot.Connections = w.connections()
	}

	p, err := process.NewProcess(w.pid)
	if err != nil {
		w.log.Debug("Error while retrieving process", "pid", w.pid, "error", err)
		return snapshot
	}
	if mem, err := p.MemoryInfo(); err == nil {
		snapshot.RSS = mem.RSS
	} else {
		w.log.Debug("Error while finding process memory", "error", err)
	}
	if cpu, err := p.CPUPercent(); err == nil {
		snapshot.CPUPercent = cpu
	} else {
		w.log.Debug("Error while finding process cpu usage", "error", err)
	}
	return snapshot
}

func (w *TelemetryWorker) report(s Snapshot) {
	for _, c := range s.Channels {
		level := slog.LevelDebug
		if c.Capacity > 0 && c.Length*10 >= c.Capacity*8 {
			level = slog.LevelWarn
		}
		w.log.Log(context.Background(), level, "Channel fill", "name", c.Name, "length", c.Length, "capacity", c.Capacity)
	}
	w.log.Debug("Process usage", "connections", s.Connections, "rss_bytes", s.RSS, "cpu_percent", s.CPUPercent)
}
