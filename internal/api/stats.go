package api

import (
	"net/http"

	"github.com/websoft9/sshbridge/internal/audit"
	"github.com/websoft9/sshbridge/internal/sshx"
	"github.com/websoft9/sshbridge/internal/stats"
)

// GetSystemStats handles POST /api/v1/get_system_stats.
func (a *API) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}

	cpuRaw, _ := client.ExecuteCommand(stats.RecipeCPU())
	cpu := stats.ParseCPU(cpuRaw)

	combinedRaw, _ := client.ExecuteCommand(stats.RecipeMemDiskUptime())
	mem, swap, disk, uptime := stats.ParseMemDiskUptime(combinedRaw)

	loadRaw, _ := client.ExecuteCommand(stats.RecipeLoadAverage())

	writeOK(w, stats.SystemStats{
		CPUPercent:  cpu.TotalPercent,
		CPUDetails:  cpu,
		Memory:      mem,
		Swap:        swap,
		Disk:        disk,
		Uptime:      uptime,
		LoadAverage: stats.CleanLine(loadRaw),
	})
}

// GetSystemInfo handles POST /api/v1/get_system_info.
func (a *API) GetSystemInfo(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}

	os, _ := client.ExecuteCommand(stats.RecipeOS())
	kernel, _ := client.ExecuteCommand(stats.RecipeKernel())
	hostname, _ := client.ExecuteCommand(stats.RecipeHostname())
	arch, _ := client.ExecuteCommand(stats.RecipeArchitecture())

	writeOK(w, stats.SystemInfo{
		OS:           stats.CleanLine(os),
		Kernel:       stats.CleanLine(kernel),
		Hostname:     stats.CleanLine(hostname),
		Architecture: stats.CleanLine(arch),
	})
}

// GetProcesses handles POST /api/v1/get_processes.
func (a *API) GetProcesses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		SortBy    string `json:"sort_by"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	raw, err := client.ExecuteCommand(stats.RecipeProcesses(req.SortBy))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, stats.ParseProcesses(raw))
}

// KillProcess handles POST /api/v1/kill_process.
func (a *API) KillProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		PID       string `json:"pid"`
		Signal    string `json:"signal,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	output, err := client.ExecuteCommand(stats.RecipeKillProcess(req.PID, req.Signal))
	if err != nil {
		a.auditEvent(r, "process.kill", "process", req.PID, audit.StatusFailed, map[string]any{"signal": req.Signal})
		writeErr(w, err)
		return
	}
	a.auditEvent(r, "process.kill", "process", req.PID, audit.StatusSuccess, map[string]any{"signal": req.Signal})
	writeOK(w, map[string]any{"output": output})
}

// TailLog handles POST /api/v1/tail_log.
func (a *API) TailLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		LogPath   string `json:"log_path"`
		Lines     int    `json:"lines,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	output, err := client.ExecuteCommand(stats.RecipeTailLog(req.LogPath, req.Lines))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"output": output})
}

// ListLogFiles handles POST /api/v1/list_log_files.
func (a *API) ListLogFiles(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	output, err := client.ExecuteCommand(stats.RecipeListLogFiles())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, map[string]any{"output": output})
}

// GetNetworkStats handles POST /api/v1/get_network_stats.
func (a *API) GetNetworkStats(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	raw, err := client.ExecuteCommand(stats.RecipeNetworkStats())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, stats.ParseNetworkStats(raw))
}

// GetActiveConnections handles POST /api/v1/get_active_connections.
func (a *API) GetActiveConnections(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	raw, err := client.ExecuteCommand(stats.RecipeActiveConnections())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, stats.ParseActiveConnections(raw))
}

// GetNetworkBandwidth handles POST /api/v1/get_network_bandwidth.
func (a *API) GetNetworkBandwidth(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	// This recipe sleeps 1s server-side to sample twice; the HTTP client is
	// expected to apply a generous timeout for this one endpoint.
	raw, err := client.ExecuteCommand(stats.RecipeNetworkBandwidth())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, stats.ParseNetworkBandwidth(raw))
}

// GetNetworkLatency handles POST /api/v1/get_network_latency.
func (a *API) GetNetworkLatency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Target    string `json:"target,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	raw, err := client.ExecuteCommand(stats.RecipeNetworkLatency(req.Target))
	if err != nil {
		writeErr(w, err)
		return
	}
	latency, ok := stats.ParseNetworkLatency(raw)
	if !ok {
		writeErr(w, sshx.NewProtocolError("ping timeout or unreachable"))
		return
	}
	writeOK(w, map[string]any{"latency_ms": latency})
}

// GetNetworkSocketStats handles POST /api/v1/get_network_socket_stats.
func (a *API) GetNetworkSocketStats(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	raw, err := client.ExecuteCommand(stats.RecipeNetworkSocketStats())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, stats.ParseNetworkSocketStats(raw))
}

// GetDiskUsage handles POST /api/v1/get_disk_usage.
func (a *API) GetDiskUsage(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}
	raw, err := client.ExecuteCommand(stats.RecipeDiskUsage())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, stats.ParseDiskUsage(raw))
}
