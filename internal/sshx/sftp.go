package sshx

import (
	"io"
	"os"

	"github.com/pkg/sftp"
)

// sftpChunkSize is the buffer size used for streaming transfers, matching
// §4.1's "8 KiB chunks" requirement.
const sftpChunkSize = 8 << 10

// openSFTP requests the "sftp" subsystem on a fresh channel and returns a
// ready client. The caller must Close it when done.
func (c *Client) openSFTP() (*sftp.Client, error) {
	transport := c.Transport()
	if transport == nil {
		return nil, errNotConnected("ssh client is not connected")
	}
	client, err := sftp.NewClient(transport)
	if err != nil {
		return nil, errTransport("open sftp subsystem", err)
	}
	return client, nil
}

// DownloadFile copies remote to a local file at local, returning the bytes
// transferred.
func (c *Client) DownloadFile(remote, local string) ([]byte, error) {
	data, err := c.DownloadFileToMemory(remote)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return nil, errTransport("write local file", err)
	}
	return data, nil
}

// DownloadFileToMemory reads remote entirely into memory and returns it.
func (c *Client) DownloadFileToMemory(remote string) ([]byte, error) {
	client, err := c.openSFTP()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	f, err := client.Open(remote)
	if err != nil {
		return nil, errTransport("open remote file", err)
	}
	defer f.Close()

	buf := make([]byte, 0, sftpChunkSize)
	chunk := make([]byte, sftpChunkSize)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errTransport("read remote file", err)
		}
	}
	return buf, nil
}

// UploadFile streams local's contents to remote.
func (c *Client) UploadFile(local, remote string) ([]byte, error) {
	data, err := os.ReadFile(local)
	if err != nil {
		return nil, errTransport("read local file", err)
	}
	return c.UploadFileFromBytes(data, remote)
}

// UploadFileFromBytes streams data to remote in 8 KiB chunks, flushing
// before close.
func (c *Client) UploadFileFromBytes(data []byte, remote string) ([]byte, error) {
	client, err := c.openSFTP()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	f, err := client.Create(remote)
	if err != nil {
		return nil, errTransport("create remote file", err)
	}

	for off := 0; off < len(data); off += sftpChunkSize {
		end := off + sftpChunkSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := f.Write(data[off:end]); err != nil {
			f.Close()
			return nil, errTransport("write remote file", err)
		}
	}

	_ = f.Sync() // best-effort flush; not all sftp servers support fsync@openssh.com

	if err := f.Close(); err != nil {
		return nil, errTransport("close remote file", err)
	}
	return data, nil
}
