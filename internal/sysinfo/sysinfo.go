package sysinfo

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is a point-in-time picture of the host the receiver runs on.
type Snapshot struct {
	Hostname    string  `json:"hostname"`
	OS          string  `json:"os"`
	Uptime      uint64  `json:"uptime"`
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage float64 `json:"memory_usage"`
	DiskUsage   float64 `json:"disk_usage"`
}

// Collect gathers a snapshot. A failed probe leaves its field zeroed
// rather than failing the whole snapshot.
func Collect() *Snapshot {
	s := &Snapshot{}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.CPUUsage = pct[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		s.MemoryUsage = memStat.UsedPercent
	}
	if diskStat, err := disk.Usage("/"); err == nil {
		s.DiskUsage = diskStat.UsedPercent
	}
	if hostInfo, err := host.Info(); err == nil {
		s.Hostname = hostInfo.Hostname
		s.OS = hostInfo.OS
		s.Uptime = hostInfo.Uptime
	}
	return s
}
