package stats

import "strings"

// ProcessInfo mirrors the Rust ProcessInfo struct.
type ProcessInfo struct {
	User    string `json:"user"`
	PID     string `json:"pid"`
	CPU     string `json:"cpu"`
	Mem     string `json:"mem"`
	Command string `json:"command"`
}

// RecipeProcesses returns the `ps aux` one-liner sorted by cpu or mem.
func RecipeProcesses(sortBy string) string {
	sortFlag := "-%cpu"
	if sortBy == "mem" {
		sortFlag = "-%mem"
	}
	return "ps aux --sort=" + sortFlag + " | head -50"
}

// ParseProcesses parses `ps aux` output (header skipped) into ProcessInfo
// rows. Lines with fewer than 11 whitespace-delimited fields are dropped.
func ParseProcesses(raw string) []ProcessInfo {
	lines := strings.Split(raw, "\n")
	var out []ProcessInfo
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		parts := strings.Fields(line)
		if len(parts) < 11 {
			continue
		}
		out = append(out, ProcessInfo{
			User:    parts[0],
			PID:     parts[1],
			CPU:     parts[2],
			Mem:     parts[3],
			Command: strings.Join(parts[10:], " "),
		})
	}
	return out
}

// RecipeKillProcess returns the kill one-liner for pid with the given signal
// (default "15" / SIGTERM when empty).
func RecipeKillProcess(pid, signal string) string {
	if signal == "" {
		signal = "15"
	}
	return "kill -" + signal + " " + pid
}
