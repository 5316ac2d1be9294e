package api

import (
	"net/http"

	"github.com/websoft9/sshbridge/internal/audit"
	"github.com/websoft9/sshbridge/internal/fileutil"
	"github.com/websoft9/sshbridge/internal/sshx"
)

type fileTransferRequest struct {
	SessionID  string `json:"session_id"`
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	Data       []byte `json:"data,omitempty"`
}

type fileTransferResponse struct {
	BytesTransferred int    `json:"bytes_transferred"`
	Data             []byte `json:"data,omitempty"`
}

// SftpDownloadFile handles POST /api/v1/sftp_download_file. An empty
// local_path means "to memory, return bytes" (§6).
func (a *API) SftpDownloadFile(w http.ResponseWriter, r *http.Request) {
	var req fileTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}

	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}

	if req.LocalPath == "" {
		data, err := client.DownloadFileToMemory(req.RemotePath)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, fileTransferResponse{BytesTransferred: len(data), Data: data})
		return
	}

	localPath, err := fileutil.ResolveLocalPath(req.LocalPath)
	if err != nil {
		writeErr(w, sshx.NewProtocolError("unsafe local path: "+err.Error()))
		return
	}

	data, err := client.DownloadFile(req.RemotePath, localPath)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, fileTransferResponse{BytesTransferred: len(data)})
}

// SftpUploadFile handles POST /api/v1/sftp_upload_file. `data` when present
// bypasses the local filesystem entirely (§6).
func (a *API) SftpUploadFile(w http.ResponseWriter, r *http.Request) {
	var req fileTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}

	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}

	var data []byte
	var err error
	if req.Data != nil {
		data, err = client.UploadFileFromBytes(req.Data, req.RemotePath)
	} else {
		data, err = client.UploadFile(req.LocalPath, req.RemotePath)
	}
	if err != nil {
		a.auditEvent(r, "sftp.upload_file", "file", req.RemotePath, audit.StatusFailed, nil)
		writeErr(w, err)
		return
	}

	a.auditEvent(r, "sftp.upload_file", "file", req.RemotePath, audit.StatusSuccess, map[string]any{"bytes": len(data)})
	writeOK(w, fileTransferResponse{BytesTransferred: len(data)})
}
