// Package stats holds the shell probe recipes and best-effort parsers behind
// the Upstream API's stats operations. Grounded 1:1 on the corresponding
// parsing blocks in original_source/src-tauri/src/commands.rs: every Parse*
// function here mirrors one Rust function's field extraction, rewritten in
// Go idiom (strconv instead of str::parse, strings.Fields instead of
// split_whitespace). No parser ever returns an error for a malformed field —
// each falls back to zero or "Unknown" exactly as the original does (§7).
package stats

import (
	"strconv"
	"strings"
)

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func parseUint(s string) uint64 {
	v, _ := strconv.ParseUint(strings.TrimSpace(strings.TrimSuffix(s, "%")), 10, 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

// CpuStats mirrors the Rust CpuStats struct.
type CpuStats struct {
	TotalPercent   float64 `json:"total_percent"`
	UserPercent    float64 `json:"user_percent"`
	SystemPercent  float64 `json:"system_percent"`
	IowaitPercent  float64 `json:"iowait_percent"`
	Cores          int     `json:"cores"`
	LoadAverage1m  float64 `json:"load_average_1m"`
	LoadAverage5m  float64 `json:"load_average_5m"`
	LoadAverage15m float64 `json:"load_average_15m"`
}

// MemoryStats mirrors the Rust MemoryStats struct (also reused for swap).
type MemoryStats struct {
	Total     uint64 `json:"total"`
	Used      uint64 `json:"used"`
	Free      uint64 `json:"free"`
	Available uint64 `json:"available"`
}

// DiskStats is the root-filesystem summary embedded in SystemStats.
type DiskStats struct {
	Total       string  `json:"total"`
	Used        string  `json:"used"`
	Available   string  `json:"available"`
	UsePercent  float64 `json:"use_percent"`
}

// SystemStats is the full get_system_stats payload.
type SystemStats struct {
	CPUPercent  float64     `json:"cpu_percent"`
	CPUDetails  CpuStats    `json:"cpu_details"`
	Memory      MemoryStats `json:"memory"`
	Swap        MemoryStats `json:"swap"`
	Disk        DiskStats   `json:"disk"`
	Uptime      string      `json:"uptime"`
	LoadAverage string      `json:"load_average"`
}

// RecipeCPU is the combined CPU probe: user/system/iowait percent, 1/5/15m
// load averages, and core count in one round trip.
func RecipeCPU() string {
	return `echo "$(top -bn1 | grep 'Cpu(s)' | sed 's/%//g' | awk '{print $2,$4,$10}') $(uptime | awk -F'load average:' '{print $2}' | xargs) $(nproc --all 2>/dev/null || grep -c '^processor' /proc/cpuinfo || sysctl -n hw.ncpu 2>/dev/null || echo '1')"`
}

// ParseCPU parses RecipeCPU's output into CpuStats.
func ParseCPU(raw string) CpuStats {
	parts := strings.Fields(raw)
	get := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	user := parseFloat(get(0))
	system := parseFloat(get(1))
	iowait := parseFloat(get(2))
	return CpuStats{
		TotalPercent:   user + system + iowait,
		UserPercent:    user,
		SystemPercent:  system,
		IowaitPercent:  iowait,
		LoadAverage1m:  parseFloat(strings.TrimSuffix(get(3), ",")),
		LoadAverage5m:  parseFloat(strings.TrimSuffix(get(4), ",")),
		LoadAverage15m: parseFloat(strings.TrimSuffix(get(5), ",")),
		Cores:          maxInt(parseInt(get(6)), 1),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// RecipeMemDiskUptime is the combined memory/swap/disk/uptime probe.
func RecipeMemDiskUptime() string {
	return `echo "$(free -m | awk 'NR==2{printf "%s %s %s %s ", $2,$3,$4,$7} NR==3{printf "%s %s %s ", $2,$3,$4}') $(df -h / | awk 'NR==2{printf "%s %s %s %s", $2,$3,$4,$5}')" && (uptime -p 2>/dev/null || uptime | awk '{print $3" "$4}')`
}

// ParseMemDiskUptime parses RecipeMemDiskUptime's output into memory, swap,
// disk, and uptime fields.
func ParseMemDiskUptime(raw string) (mem, swap MemoryStats, disk DiskStats, uptime string) {
	trimmed := strings.TrimSpace(raw)
	parts := strings.Fields(trimmed)
	get := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return "0"
	}

	mem = MemoryStats{
		Total:     parseUint(get(0)),
		Used:      parseUint(get(1)),
		Free:      parseUint(get(2)),
		Available: parseUint(get(3)),
	}
	swap = MemoryStats{
		Total: parseUint(get(4)),
		Used:  parseUint(get(5)),
		Free:  parseUint(get(6)),
	}
	disk = DiskStats{
		Total:      get(7),
		Used:       get(8),
		Available:  get(9),
		UsePercent: parseFloat(strings.TrimSuffix(get(10), "%")),
	}

	if len(parts) > 11 {
		uptime = strings.Join(parts[11:], " ")
	} else {
		uptime = "Unknown"
	}
	return
}

// RecipeLoadAverage returns the one-liner used to refresh load_average alone.
func RecipeLoadAverage() string {
	return `uptime | awk -F'load average:' '{print $2}' | xargs`
}
