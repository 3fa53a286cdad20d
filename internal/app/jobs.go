package app

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/talkincode/productgate/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 60s", a.SchedBackendProbeTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 5m", a.SchedLatencyReportTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(cpuuse[0]*100))
	}

	meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("productgate_cpuuse", int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("productgate_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedBackendProbeTask pings the active store and the users-api
// concurrently and records availability gauges.
func (a *Application) SchedBackendProbeTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		if err := a.store.Ping(ctx); err != nil {
			metrics.SetGauge("backend_up", 0)
			zap.L().Warn("backend probe failed",
				zap.String("backend", a.store.Backend()), zap.Error(err))
			return nil
		}
		metrics.SetGauge("backend_up", 1)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		if err := a.usersClient.Ping(ctx); err != nil {
			metrics.SetGauge("users_api_up", 0)
			zap.L().Warn("users-api probe failed", zap.Error(err))
			return nil
		}
		metrics.SetGauge("users_api_up", 1)
		metrics.RecordLatency("users_api_latency_ms", time.Since(start))
		return nil
	})
	_ = g.Wait()
}

// SchedLatencyReportTask logs a request latency summary for the
// trailing window.
func (a *Application) SchedLatencyReportTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	summary, err := metrics.Summarize("http_request_ms", 5*time.Minute)
	if err != nil {
		zap.L().Warn("latency summary failed", zap.Error(err))
		return
	}
	if summary.Count == 0 {
		return
	}
	zap.L().Info("http latency summary",
		zap.Int("count", summary.Count),
		zap.Float64("avg_ms", summary.Avg),
		zap.Float64("p95_ms", summary.P95))
}
