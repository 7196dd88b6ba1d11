package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

// SystemStatus describes the runtime state of the process and host
type SystemStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	DatabasePath  string  `json:"database_path"`
}

// handleSystemStatus returns host and process diagnostics
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := SystemStatus{
		Status:        "ok",
		UptimeSeconds: time.Since(startTime).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		DatabasePath:  s.cfg.DatabasePath,
	}

	if percents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	} else if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryPercent = vm.UsedPercent
		status.MemoryUsedMB = float64(vm.Used) / 1024 / 1024
	} else {
		s.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	status.HeapAllocMB = float64(ms.HeapAlloc) / 1024 / 1024

	writeJSON(w, http.StatusOK, status)
}
