package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Resources describes the host as seen when sizing a handle pool.
type Resources struct {
	PhysicalCPUs    int
	LogicalCPUs     int
	AvailableMemory uint64 // bytes; 0 when unknown
}

// Probe reads CPU and memory figures. Failures fall back to runtime values
// and leave memory unknown.
func Probe() Resources {
	res := Resources{
		PhysicalCPUs: runtime.NumCPU(),
		LogicalCPUs:  runtime.NumCPU(),
	}
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		res.PhysicalCPUs = n
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		res.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		res.AvailableMemory = vm.Available
	}
	return res
}

// RecommendedWorkers returns how many engine handles the host can carry:
// one per physical core, capped by how many handles of perHandle bytes fit
// in half the available memory. Never less than one.
func (r Resources) RecommendedWorkers(perHandle uint64) int {
	n := r.PhysicalCPUs
	if n <= 0 {
		n = 1
	}
	if perHandle > 0 && r.AvailableMemory > 0 {
		byMem := int(r.AvailableMemory / 2 / perHandle)
		if byMem < n {
			n = byMem
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}
