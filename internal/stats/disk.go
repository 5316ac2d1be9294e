package stats

import "strings"

// DiskInfo mirrors the Rust DiskInfo struct.
type DiskInfo struct {
	Filesystem   string `json:"filesystem"`
	Path         string `json:"path"`
	Total        string `json:"total"`
	Available    string `json:"available"`
	Usage        int    `json:"usage"`
	InodesTotal  string `json:"inodes_total"`
	InodesUsage  int    `json:"inodes_usage"`
}

// RecipeDiskUsage combines `df -hT` and `df -iT`, separated by a "---"
// marker line, into one round trip.
func RecipeDiskUsage() string {
	return `df -hT | awk 'NR>1 {print $1"|"$2"|"$3"|"$5"|"$6"|"$7}'; echo '---'; df -iT | awk 'NR>1 {print $1"|"$3"|"$6"|"$7}'`
}

// ParseDiskUsage parses RecipeDiskUsage's output into at most 20 DiskInfo
// rows, dropping filesystems reporting zero total size.
func ParseDiskUsage(raw string) []DiskInfo {
	sections := strings.SplitN(raw, "---", 2)
	if len(sections) < 2 {
		return nil
	}

	type inodeInfo struct {
		total string
		usage int
	}
	inodes := make(map[string]inodeInfo)
	for _, line := range strings.Split(sections[1], "\n") {
		parts := strings.Split(strings.TrimSpace(line), "|")
		if len(parts) < 4 {
			continue
		}
		key := parts[0] + ":" + parts[3]
		inodes[key] = inodeInfo{total: parts[1], usage: parseInt(strings.TrimSuffix(parts[2], "%"))}
	}

	var disks []DiskInfo
	for _, line := range strings.Split(sections[0], "\n") {
		parts := strings.Split(strings.TrimSpace(line), "|")
		if len(parts) < 6 {
			continue
		}
		filesystem, total, available, path := parts[0], parts[2], parts[3], parts[5]
		if total == "0" || total == "0K" || total == "0M" {
			continue
		}

		ino := inodes[filesystem+":"+path]
		if ino.total == "" {
			ino.total = "N/A"
		}

		disks = append(disks, DiskInfo{
			Filesystem:  filesystem,
			Path:        path,
			Total:       total,
			Available:   available,
			Usage:       parseInt(strings.TrimSuffix(parts[4], "%")),
			InodesTotal: ino.total,
			InodesUsage: ino.usage,
		})
		if len(disks) == 20 {
			break
		}
	}
	return disks
}
