package system

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a snapshot of the machine the render ran on
type HostStats struct {
	CPUModel       string
	LogicalCores   int
	CPUPercent     float64
	MemTotal       uint64
	MemUsedPercent float64
	HeapAlloc      uint64
}

// CollectHostStats samples CPU and memory usage. CPU load is measured since
// the previous call.
func CollectHostStats() (HostStats, error) {
	var s HostStats

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		s.CPUModel = infos[0].ModelName
	}

	cores, err := cpu.Counts(true)
	if err != nil {
		return s, fmt.Errorf("cpu counts: %w", err)
	}
	s.LogicalCores = cores

	percents, err := cpu.Percent(0, false)
	if err != nil {
		return s, fmt.Errorf("cpu percent: %w", err)
	}
	if len(percents) > 0 {
		s.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return s, fmt.Errorf("virtual memory: %w", err)
	}
	s.MemTotal = vm.Total
	s.MemUsedPercent = vm.UsedPercent

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAlloc = ms.HeapAlloc

	return s, nil
}

func (s HostStats) String() string {
	return fmt.Sprintf("CPU: %s (%d cores) %.1f%% | RAM: %.1f%% of %d MB | Heap: %d MB",
		s.CPUModel, s.LogicalCores, s.CPUPercent, s.MemUsedPercent, s.MemTotal>>20, s.HeapAlloc>>20)
}
