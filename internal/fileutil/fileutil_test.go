package fileutil_test

import (
	"path/filepath"
	"testing"

	"github.com/websoft9/sshbridge/internal/fileutil"
)

func TestResolveLocalPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "empty means memory, rejected here", path: "", wantErr: true},
		{name: "relative path rejected", path: "downloads/file.txt", wantErr: true},
		{name: "absolute path accepted", path: "/home/user/downloads/file.txt", wantErr: false},
		{name: "absolute path with traversal is cleaned, still absolute", path: "/home/user/../other/file.txt", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fileutil.ResolveLocalPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ResolveLocalPath(%q) = %q, want error", tt.path, got)
				}
				return
			}
			if err != nil {
				t.Errorf("ResolveLocalPath(%q) unexpected error: %v", tt.path, err)
				return
			}
			if !filepath.IsAbs(got) {
				t.Errorf("result %q is not absolute", got)
			}
			if want := filepath.Clean(tt.path); got != want {
				t.Errorf("ResolveLocalPath(%q) = %q, want cleaned %q", tt.path, got, want)
			}
		})
	}
}
