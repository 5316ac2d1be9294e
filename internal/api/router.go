package api

import "github.com/go-chi/chi/v5"

// Mount attaches every Upstream API operation under /api/v1 (§6's
// `POST /api/v1/<snake_case_name>`, or GET for pure listing endpoints).
func (a *API) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ssh_connect", a.SshConnect)
		r.Post("/ssh_cancel_connect", a.SshCancelConnect)
		r.Post("/ssh_disconnect", a.SshDisconnect)
		r.Get("/list_sessions", a.ListSessions)
		r.Post("/ssh_execute_command", a.SshExecuteCommand)
		r.Post("/ssh_tab_complete", a.SshTabComplete)

		r.Post("/sftp_download_file", a.SftpDownloadFile)
		r.Post("/sftp_upload_file", a.SftpUploadFile)

		r.Post("/list_files", a.ListFiles)
		r.Post("/create_directory", a.CreateDirectory)
		r.Post("/delete_file", a.DeleteFile)
		r.Post("/rename_file", a.RenameFile)
		r.Post("/create_file", a.CreateFile)
		r.Post("/read_file_content", a.ReadFileContent)
		r.Post("/copy_file", a.CopyFile)

		r.Post("/get_system_stats", a.GetSystemStats)
		r.Post("/get_system_info", a.GetSystemInfo)
		r.Post("/get_processes", a.GetProcesses)
		r.Post("/kill_process", a.KillProcess)
		r.Post("/tail_log", a.TailLog)
		r.Post("/list_log_files", a.ListLogFiles)
		r.Post("/get_network_stats", a.GetNetworkStats)
		r.Post("/get_active_connections", a.GetActiveConnections)
		r.Post("/get_network_bandwidth", a.GetNetworkBandwidth)
		r.Post("/get_network_latency", a.GetNetworkLatency)
		r.Post("/get_network_socket_stats", a.GetNetworkSocketStats)
		r.Post("/get_disk_usage", a.GetDiskUsage)
	})
}
