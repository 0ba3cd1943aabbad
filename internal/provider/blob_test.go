package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDirBlobStore_Put(t *testing.T) {
	dir := t.TempDir()
	b := &DirBlobStore{Dir: dir, BaseURL: "http://localhost:8080/media/"}

	url, err := b.Put(context.Background(), "report-2-1.mp3", []byte("audio"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://localhost:8080/media/report-2-1.mp3" {
		t.Errorf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "report-2-1.mp3"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "audio" {
		t.Errorf("data = %q", data)
	}
}

func TestDirBlobStore_Put_FlattensPath(t *testing.T) {
	dir := t.TempDir()
	b := &DirBlobStore{Dir: dir, BaseURL: "http://localhost:8080/media"}

	url, err := b.Put(context.Background(), "../../etc/evil.mp3", []byte("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://localhost:8080/media/evil.mp3" {
		t.Errorf("url = %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "evil.mp3")); err != nil {
		t.Errorf("blob not written inside dir: %v", err)
	}
}
