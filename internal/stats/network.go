package stats

import "strings"

// NetworkInterface mirrors the Rust NetworkInterface struct.
type NetworkInterface struct {
	Name      string `json:"name"`
	RxBytes   uint64 `json:"rx_bytes"`
	TxBytes   uint64 `json:"tx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	TxPackets uint64 `json:"tx_packets"`
}

// RecipeNetworkStats walks /sys/class/net, emitting one CSV line per
// non-loopback interface.
func RecipeNetworkStats() string {
	return `for iface in /sys/class/net/*; do
    name=$(basename $iface)
    if [ "$name" != "lo" ]; then
        rx_bytes=$(cat $iface/statistics/rx_bytes 2>/dev/null || echo 0)
        tx_bytes=$(cat $iface/statistics/tx_bytes 2>/dev/null || echo 0)
        rx_packets=$(cat $iface/statistics/rx_packets 2>/dev/null || echo 0)
        tx_packets=$(cat $iface/statistics/tx_packets 2>/dev/null || echo 0)
        echo "$name,$rx_bytes,$tx_bytes,$rx_packets,$tx_packets"
    fi
done`
}

// ParseNetworkStats parses RecipeNetworkStats' CSV lines, skipping any line
// that does not have exactly 5 comma-separated fields. A counter field that
// is not a number parses as 0.
func ParseNetworkStats(raw string) []NetworkInterface {
	var out []NetworkInterface
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 5 {
			continue
		}
		out = append(out, NetworkInterface{
			Name:      parts[0],
			RxBytes:   parseUint(parts[1]),
			TxBytes:   parseUint(parts[2]),
			RxPackets: parseUint(parts[3]),
			TxPackets: parseUint(parts[4]),
		})
	}
	return out
}

// NetworkConnection mirrors the Rust NetworkConnection struct.
type NetworkConnection struct {
	Protocol      string `json:"protocol"`
	LocalAddress  string `json:"local_address"`
	RemoteAddress string `json:"remote_address"`
	State         string `json:"state"`
	PidProgram    string `json:"pid_program"`
}

// RecipeActiveConnections returns the `ss -tunp` one-liner.
func RecipeActiveConnections() string {
	return "ss -tunp 2>/dev/null | tail -n +2 | head -50"
}

// ParseActiveConnections parses `ss -tunp` rows into NetworkConnection.
func ParseActiveConnections(raw string) []NetworkConnection {
	var out []NetworkConnection
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 6 {
			continue
		}
		state := "ESTAB"
		if len(parts) > 1 && parts[1] == "0" {
			state = parts[1]
		}
		pidProgram := ""
		if len(parts) > 6 {
			pidProgram = parts[6]
		}
		out = append(out, NetworkConnection{
			Protocol:      parts[0],
			LocalAddress:  parts[4],
			RemoteAddress: parts[5],
			State:         state,
			PidProgram:    pidProgram,
		})
	}
	return out
}

// NetworkBandwidth mirrors the Rust NetworkBandwidth struct.
type NetworkBandwidth struct {
	Interface    string  `json:"interface"`
	RxBytesPerSec float64 `json:"rx_bytes_per_sec"`
	TxBytesPerSec float64 `json:"tx_bytes_per_sec"`
}

// RecipeNetworkBandwidth samples interface byte counters twice, 1s apart.
func RecipeNetworkBandwidth() string {
	return `iface_list=""
for iface in /sys/class/net/*; do
    name=$(basename $iface)
    if [ "$name" != "lo" ]; then
        iface_list="$iface_list $name"
    fi
done

for iface in $iface_list; do
    rx1=$(cat /sys/class/net/$iface/statistics/rx_bytes 2>/dev/null || echo 0)
    tx1=$(cat /sys/class/net/$iface/statistics/tx_bytes 2>/dev/null || echo 0)
    echo "$iface,$rx1,$tx1"
done
sleep 1
for iface in $iface_list; do
    rx2=$(cat /sys/class/net/$iface/statistics/rx_bytes 2>/dev/null || echo 0)
    tx2=$(cat /sys/class/net/$iface/statistics/tx_bytes 2>/dev/null || echo 0)
    echo "$iface,$rx2,$tx2"
done`
}

// ParseNetworkBandwidth pairs the before/after halves of the sample by
// position and computes a one-second byte-rate delta per interface.
func ParseNetworkBandwidth(raw string) []NetworkBandwidth {
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")
	mid := len(lines) / 2
	if mid == 0 {
		return nil
	}
	before, after := lines[:mid], lines[mid:]

	var out []NetworkBandwidth
	for i := 0; i < len(before) && i < len(after); i++ {
		b := strings.Split(before[i], ",")
		a := strings.Split(after[i], ",")
		if len(b) != 3 || len(a) != 3 || b[0] != a[0] {
			continue
		}
		out = append(out, NetworkBandwidth{
			Interface:     b[0],
			RxBytesPerSec: parseFloat(a[1]) - parseFloat(b[1]),
			TxBytesPerSec: parseFloat(a[2]) - parseFloat(b[2]),
		})
	}
	return out
}

// RecipeNetworkLatency returns a one-shot ping one-liner against target
// (default "8.8.8.8" when empty).
func RecipeNetworkLatency(target string) string {
	if target == "" {
		target = "8.8.8.8"
	}
	return "ping -c 1 -W 1 " + target + ` 2>&1 | grep -oP 'time=\K[0-9.]+' || echo 'timeout'`
}

// ParseNetworkLatency returns (latencyMs, ok). ok is false on timeout, empty
// output, or an unparseable value.
func ParseNetworkLatency(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "timeout" {
		return 0, false
	}
	v := parseFloat(trimmed)
	return v, v > 0 || trimmed == "0"
}

// NetworkSocketStats mirrors the Rust NetworkSocketStats struct.
type NetworkSocketStats struct {
	Total          int `json:"total"`
	TCPTotal       int `json:"tcp_total"`
	TCPEstablished int `json:"tcp_established"`
	TCPTimewait    int `json:"tcp_timewait"`
	TCPSynRecv     int `json:"tcp_synrecv"`
	UDPTotal       int `json:"udp_total"`
}

// RecipeNetworkSocketStats returns the combined `ss -s` + SYN_RECV probe.
func RecipeNetworkSocketStats() string {
	return `ss -s 2>/dev/null || echo 'Total: 0'; echo "---SYNRECV---"; ss -ant 2>/dev/null | grep -c SYN-RECV || echo 0`
}

// ParseNetworkSocketStats parses the combined `ss -s` summary and SYN_RECV
// count, split on the literal "---SYNRECV---" marker.
func ParseNetworkSocketStats(raw string) NetworkSocketStats {
	var stats NetworkSocketStats
	sections := strings.SplitN(raw, "---SYNRECV---", 2)

	for _, line := range strings.Split(sections[0], "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Total:"):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				stats.Total = parseInt(fields[1])
			}
		case strings.HasPrefix(line, "TCP:"):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				stats.TCPTotal = parseInt(fields[1])
			}
			if i := strings.Index(line, "estab "); i >= 0 {
				stats.TCPEstablished = parseInt(firstToken(line[i+len("estab "):]))
			}
			if i := strings.Index(line, "timewait "); i >= 0 {
				stats.TCPTimewait = parseInt(firstToken(line[i+len("timewait "):]))
			}
		case strings.HasPrefix(line, "UDP:"):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				stats.UDPTotal = parseInt(fields[1])
			}
		}
	}

	if len(sections) > 1 {
		stats.TCPSynRecv = parseInt(sections[1])
	}
	return stats
}

// firstToken returns s up to the first ',' or ')', trimmed.
func firstToken(s string) string {
	end := strings.IndexAny(s, ",)")
	if end < 0 {
		end = len(s)
	}
	return strings.TrimSpace(s[:end])
}
