package fsblob

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeptools/print-core/storages"
)

func newTestStore(t *testing.T, sealed bool) *Store {
	t.Helper()
	conf := &storages.Conf{
		Type:          "fsblob",
		Dir:           t.TempDir(),
		PublicBaseURL: "http://files.local/files",
	}
	if sealed {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			t.Fatalf("rand: %v", err)
		}
		conf.SealDownloads = true
		conf.SealKeyB64 = base64.RawURLEncoding.EncodeToString(key)
		conf.TokenTTLSec = 60
	}
	s := &Store{Conf: conf}
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func TestUploadAndServe(t *testing.T) {
	s := newTestStore(t, false)
	data := []byte("%PDF-1.4 fake")

	url, err := s.Upload(context.Background(), data, "jobs/abc/card.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	want := "http://files.local/files/jobs/abc/card.pdf"
	if url != want {
		t.Errorf("url: got %q want %q", url, want)
	}
	onDisk, err := os.ReadFile(filepath.Join(s.Conf.Dir, "jobs", "abc", "card.pdf"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(onDisk) != string(data) {
		t.Error("stored bytes differ from uploaded bytes")
	}

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/jobs/abc/card.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type: got %q want %q", ct, "application/pdf")
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != string(data) {
		t.Error("served bytes differ from uploaded bytes")
	}
}

func TestUploadRejectsTraversal(t *testing.T) {
	s := newTestStore(t, false)
	for _, p := range []string{"", "/etc/passwd", "../escape.txt", "a/../../escape.txt"} {
		if _, err := s.Upload(context.Background(), []byte("x"), p, ""); err == nil {
			t.Errorf("path %q should be rejected", p)
		}
	}
}

func TestSealedDownloads(t *testing.T) {
	s := newTestStore(t, true)
	url, err := s.Upload(context.Background(), []byte("sheet"), "jobs/abc/sheet1.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	token := strings.TrimPrefix(url, "http://files.local/files/")
	if token == "jobs/abc/sheet1.jpg" {
		t.Fatal("sealed url leaked the plain path")
	}

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/" + token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sealed fetch status: got %d want 200", resp.StatusCode)
	}

	// the plain path must not work when sealing is on
	resp, err = http.Get(srv.URL + "/jobs/abc/sheet1.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("plain fetch status: got %d want 403", resp.StatusCode)
	}
}
