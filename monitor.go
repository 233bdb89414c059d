package proaudio

import (
	"sync"
	"time"
)

// Monitor tracks the in-flight privileged process and apply totals
type Monitor struct {
	mu              sync.RWMutex
	activeProcesses map[int]time.Time // PID -> start time
	totalApplies    int64
	failedApplies   int64
	lastError       string
}

var (
	monitorInstance *Monitor
	monitorOnce     sync.Once
)

// GetMonitor returns the global monitor instance
func GetMonitor() *Monitor {
	monitorOnce.Do(func() {
		monitorInstance = &Monitor{
			activeProcesses: make(map[int]time.Time),
		}
	})
	return monitorInstance
}

// TrackProcess registers a started elevated process
func (m *Monitor) TrackProcess(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeProcesses[pid] = timeNow()
	applyInFlight.Set(float64(len(m.activeProcesses)))
}

// UntrackProcess removes an exited elevated process
func (m *Monitor) UntrackProcess(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.activeProcesses, pid)
	applyInFlight.Set(float64(len(m.activeProcesses)))
}

// RecordApply counts one finished apply. err is nil on success.
func (m *Monitor) RecordApply(result string, err error, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalApplies++
	if err != nil {
		m.failedApplies++
		m.lastError = err.Error()
	}

	applyTotal.WithLabelValues(result).Inc()
	applyDuration.Observe(elapsed.Seconds())
}

// ActiveProcesses returns the number of currently running elevated processes
func (m *Monitor) ActiveProcesses() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.activeProcesses)
}

// MonitorStats is a snapshot of the monitor
type MonitorStats struct {
	ActiveProcesses  int
	TotalApplies     int64
	FailedApplies    int64
	SuccessRate      float64
	OldestProcessAge time.Duration
	LastError        string
}

// GetStats returns current monitoring statistics
func (m *Monitor) GetStats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := MonitorStats{
		ActiveProcesses: len(m.activeProcesses),
		TotalApplies:    m.totalApplies,
		FailedApplies:   m.failedApplies,
		SuccessRate:     100.0,
		LastError:       m.lastError,
	}

	if m.totalApplies > 0 {
		successful := m.totalApplies - m.failedApplies
		stats.SuccessRate = float64(successful) / float64(m.totalApplies) * 100.0
	}

	if len(m.activeProcesses) > 0 {
		oldest := timeNow()
		for _, startTime := range m.activeProcesses {
			if startTime.Before(oldest) {
				oldest = startTime
			}
		}
		stats.OldestProcessAge = timeNow().Sub(oldest)
	}

	return stats
}

// Reset clears all monitoring statistics
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeProcesses = make(map[int]time.Time)
	m.totalApplies = 0
	m.failedApplies = 0
	m.lastError = ""
	applyInFlight.Set(0)
}
