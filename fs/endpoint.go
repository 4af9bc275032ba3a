package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.Endpoint = (*Endpoint)(nil)

// Endpoint wraps a devq.Endpoint with file-based caching of responses keyed
// by prompt. Only successful responses are cached.
type Endpoint struct {
	inner     devq.Endpoint
	namespace string
	cacheDir  string
}

// NewEndpoint creates a new caching endpoint. The namespace, usually the
// provider and model name, separates entries of different models.
func NewEndpoint(inner devq.Endpoint, namespace, cacheDir string) *Endpoint {
	return &Endpoint{
		inner:     inner,
		namespace: namespace,
		cacheDir:  cacheDir,
	}
}

type cacheEntry struct {
	Namespace string `json:"namespace"`
	Response  string `json:"response"`
}

// Generate returns a cached response or delegates to the inner endpoint.
func (e *Endpoint) Generate(ctx context.Context, prompt string) (string, error) {
	hash := e.hashPrompt(prompt)

	if cached, err := e.loadFromCache(hash); err == nil {
		return cached, nil
	}

	resp, err := e.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	// Best-effort.
	_ = e.saveToCache(hash, resp)

	return resp, nil
}

func (e *Endpoint) hashPrompt(prompt string) string {
	h := sha256.New()
	h.Write([]byte(e.namespace))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

func (e *Endpoint) cachePath(hash string) string {
	return filepath.Join(e.cacheDir, hash+".json")
}

func (e *Endpoint) loadFromCache(hash string) (string, error) {
	data, err := os.ReadFile(e.cachePath(hash))
	if err != nil {
		return "", err
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", err
	}
	if entry.Namespace != e.namespace {
		return "", os.ErrNotExist
	}

	return entry.Response, nil
}

func (e *Endpoint) saveToCache(hash, response string) error {
	if err := os.MkdirAll(e.cacheDir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(cacheEntry{Namespace: e.namespace, Response: response})
	if err != nil {
		return err
	}

	return writeFileAtomic(e.cachePath(hash), data)
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so readers never see a partial entry.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
