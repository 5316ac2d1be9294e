package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/websoft9/sshbridge/internal/audit"
	"github.com/websoft9/sshbridge/internal/sshx"
)

// sq single-quotes path for safe inclusion in a shell command, matching the
// original recipes' `'%s'` substitutions (§6).
func sq(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

func (a *API) runRecipe(w http.ResponseWriter, r *http.Request, sessionID, recipe string) (string, bool) {
	client := a.Manager.GetSession(sessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(sessionID))
		return "", false
	}
	output, err := client.ExecuteCommand(recipe)
	if err != nil {
		writeErr(w, err)
		return "", false
	}
	return output, true
}

type pathRequest struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
}

// ListFiles handles POST /api/v1/list_files.
func (a *API) ListFiles(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	output, ok := a.runRecipe(w, r, req.SessionID, fmt.Sprintf("ls -la --time-style=long-iso %s", sq(req.Path)))
	if !ok {
		return
	}
	writeOK(w, map[string]any{"output": output})
}

// CreateDirectory handles POST /api/v1/create_directory.
func (a *API) CreateDirectory(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	if _, ok := a.runRecipe(w, r, req.SessionID, fmt.Sprintf("mkdir -p %s", sq(req.Path))); !ok {
		return
	}
	writeOK(w, map[string]any{"created": true})
}

type deleteFileRequest struct {
	SessionID   string `json:"session_id"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"is_directory"`
}

// DeleteFile handles POST /api/v1/delete_file.
func (a *API) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var req deleteFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	flag := "-f"
	if req.IsDirectory {
		flag = "-rf"
	}
	if _, ok := a.runRecipe(w, r, req.SessionID, fmt.Sprintf("rm %s %s", flag, sq(req.Path))); !ok {
		a.auditEvent(r, "file.delete", "file", req.Path, audit.StatusFailed, nil)
		return
	}
	a.auditEvent(r, "file.delete", "file", req.Path, audit.StatusSuccess, map[string]any{"is_directory": req.IsDirectory})
	writeOK(w, map[string]any{"deleted": true})
}

type renameFileRequest struct {
	SessionID string `json:"session_id"`
	OldPath   string `json:"old_path"`
	NewPath   string `json:"new_path"`
}

// RenameFile handles POST /api/v1/rename_file.
func (a *API) RenameFile(w http.ResponseWriter, r *http.Request) {
	var req renameFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	if _, ok := a.runRecipe(w, r, req.SessionID, fmt.Sprintf("mv %s %s", sq(req.OldPath), sq(req.NewPath))); !ok {
		a.auditEvent(r, "file.rename", "file", req.OldPath, audit.StatusFailed, nil)
		return
	}
	a.auditEvent(r, "file.rename", "file", req.OldPath, audit.StatusSuccess, map[string]any{"new_path": req.NewPath})
	writeOK(w, map[string]any{"renamed": true})
}

type createFileRequest struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	Content   string `json:"content"`
}

// CreateFile handles POST /api/v1/create_file. Content is piped through a
// heredoc so arbitrary bytes (including embedded quotes) survive the shell
// boundary, matching how the original recipe avoids breaking on quoting.
func (a *API) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req createFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	recipe := fmt.Sprintf("cat > %s << 'SSHBRIDGE_EOF'\n%s\nSSHBRIDGE_EOF", sq(req.Path), req.Content)
	if _, ok := a.runRecipe(w, r, req.SessionID, recipe); !ok {
		a.auditEvent(r, "file.create", "file", req.Path, audit.StatusFailed, nil)
		return
	}
	a.auditEvent(r, "file.create", "file", req.Path, audit.StatusSuccess, nil)
	writeOK(w, map[string]any{"created": true})
}

// ReadFileContent handles POST /api/v1/read_file_content.
func (a *API) ReadFileContent(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	output, ok := a.runRecipe(w, r, req.SessionID, fmt.Sprintf("cat %s", sq(req.Path)))
	if !ok {
		return
	}
	writeOK(w, map[string]any{"content": output})
}

type copyFileRequest struct {
	SessionID string `json:"session_id"`
	Src       string `json:"src"`
	Dst       string `json:"dst"`
}

// CopyFile handles POST /api/v1/copy_file.
func (a *API) CopyFile(w http.ResponseWriter, r *http.Request) {
	var req copyFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	if _, ok := a.runRecipe(w, r, req.SessionID, fmt.Sprintf("cp -r %s %s", sq(req.Src), sq(req.Dst))); !ok {
		a.auditEvent(r, "file.copy", "file", req.Src, audit.StatusFailed, nil)
		return
	}
	a.auditEvent(r, "file.copy", "file", req.Src, audit.StatusSuccess, map[string]any{"dst": req.Dst})
	writeOK(w, map[string]any{"copied": true})
}
