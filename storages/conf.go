package storages

import "time"

type Conf struct {
	Type string `json:"type"` // fsblob

	Dir           string `json:"dir"`             // root directory for stored blobs
	PublicBaseURL string `json:"public_base_url"` // e.g. http://192.168.1.10:8080/files

	// Sealed downloads: when set, plain paths are rejected and agents must
	// present an encrypted, expiring token instead.
	SealDownloads bool   `json:"seal_downloads"`
	SealKeyB64    string `json:"seal_key_b64"` // base64 raw-url, 32 bytes decoded
	TokenTTLSec   int    `json:"token_ttl_sec"`
}

const defaultTokenTTL = time.Hour

func (c *Conf) TokenTTL() time.Duration {
	if c.TokenTTLSec <= 0 {
		return defaultTokenTTL
	}
	return time.Duration(c.TokenTTLSec) * time.Second
}
