package fsblob

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zeptools/print-core/responses"
	"github.com/zeptools/print-core/sec"
	"github.com/zeptools/print-core/storages"
)

// Store - filesystem-backed blob store. Artifacts land under Conf.Dir and
// are served by Handler; the returned URLs point at Conf.PublicBaseURL so
// agents on the local network can fetch them with a plain GET.
type Store struct {
	Conf *storages.Conf

	// set when Conf.SealDownloads is on
	cipher *sec.XChaCha20Poly1305Cipher
}

// Ensure fsblob.Store implements storages.BlobStore interface
var _ storages.BlobStore = (*Store)(nil)

func Register() {
	storages.RegisterFactory("fsblob", func(conf *storages.Conf) (storages.BlobStore, error) {
		return &Store{Conf: conf}, nil
	})
}

func (s *Store) Init() error {
	if s.Conf.Dir == "" {
		return fmt.Errorf("fsblob: dir not configured")
	}
	if err := os.MkdirAll(s.Conf.Dir, 0o755); err != nil {
		return fmt.Errorf("fsblob: %w", err)
	}
	if s.Conf.SealDownloads {
		key, err := base64.RawURLEncoding.DecodeString(s.Conf.SealKeyB64)
		if err != nil {
			return fmt.Errorf("fsblob: decode seal key: %w", err)
		}
		if s.cipher, err = sec.NewXChaCha20Poly1305CipherBase64(key); err != nil {
			return fmt.Errorf("fsblob: %w", err)
		}
	}
	log.Printf("[INFO] fsblob store initialized at %s", s.Conf.Dir)
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConf() *storages.Conf {
	return s.Conf
}

// cleanRelPath rejects anything that could escape the blob root.
func cleanRelPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("fsblob: invalid blob path %q", p)
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("fsblob: invalid blob path %q", p)
	}
	return cleaned, nil
}

func (s *Store) Upload(_ context.Context, data []byte, blobPath string, _ string) (string, error) {
	rel, err := cleanRelPath(blobPath)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.Conf.Dir, filepath.FromSlash(rel))
	if err = os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("fsblob: %w", err)
	}
	if err = os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("fsblob: %w", err)
	}
	ref := rel
	if s.cipher != nil {
		if ref, err = s.sealPath(rel); err != nil {
			return "", err
		}
	}
	return strings.TrimSuffix(s.Conf.PublicBaseURL, "/") + "/" + ref, nil
}

// sealPath wraps a blob path and an expiry into an encrypted token, so
// leaked URLs stop working after the TTL.
func (s *Store) sealPath(rel string) (string, error) {
	exp := time.Now().Add(s.Conf.TokenTTL()).Unix()
	token, err := s.cipher.EncryptEncode([]byte(rel + "|" + strconv.FormatInt(exp, 10)))
	if err != nil {
		return "", fmt.Errorf("fsblob: seal path: %w", err)
	}
	return token, nil
}

func (s *Store) unsealPath(token string) (string, error) {
	plain, err := s.cipher.DecodeDecrypt(token)
	if err != nil {
		return "", fmt.Errorf("fsblob: bad download token")
	}
	rel, expStr, ok := strings.Cut(string(plain), "|")
	if !ok {
		return "", fmt.Errorf("fsblob: bad download token")
	}
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return "", fmt.Errorf("fsblob: download token expired")
	}
	return rel, nil
}

// Handler serves stored blobs. Mount it under the path segment that
// Conf.PublicBaseURL ends with, e.g. /files/.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ref := strings.TrimPrefix(r.URL.Path, "/")
		var rel string
		var err error
		if s.cipher != nil {
			if rel, err = s.unsealPath(ref); err != nil {
				log.Printf("[WARN] %v", err)
				w.WriteHeader(http.StatusForbidden)
				return
			}
		} else {
			rel = ref
		}
		if rel, err = cleanRelPath(rel); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		full := filepath.Join(s.Conf.Dir, filepath.FromSlash(rel))
		if _, err = os.Stat(full); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if path.Ext(rel) == ".pdf" && r.Method == http.MethodGet {
			data, readErr := os.ReadFile(full)
			if readErr != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			responses.WritePDFBytesWithFilename(w, path.Base(rel), data)
			return
		}
		if ct := mime.TypeByExtension(path.Ext(rel)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		http.ServeFile(w, r, full)
	})
}
