// Package sysinfo collects host information attached as tags to every
// tracking run.
package sysinfo

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Collect returns system tags describing the machine a run executed on.
// Best-effort: probes that fail are simply omitted.
func Collect() map[string]string {
	tags := make(map[string]string)

	if info, err := host.Info(); err == nil {
		tags["system.hostname"] = info.Hostname
		tags["system.os"] = info.OS
		tags["system.platform"] = info.Platform
	}

	if n, err := cpu.Counts(true); err == nil {
		tags["system.cpu_count"] = fmt.Sprintf("%d", n)
	}

	if v, err := mem.VirtualMemory(); err == nil {
		tags["system.memory_total_bytes"] = fmt.Sprintf("%d", v.Total)
	}

	return tags
}
