package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	appLog "rostercal/internal/log"
)

// writeMeta is stored next to the exported calendar and describes the last
// body written.
type writeMeta struct {
	SHA256    string    `json:"sha256"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WriteResult describes the outcome of a single Write.
type WriteResult struct {
	SHA256  string
	Changed bool // false if the file on disk already had this content
}

// Writer publishes an encoded calendar to a file, skipping the write when
// the content has not changed since the last run.
type Writer struct {
	path string
	now  func() time.Time
}

// NewWriter creates a Writer for path. Metadata is kept in path+".meta.json".
func NewWriter(path string) *Writer {
	if path == "" {
		// Fallback for development runs without a configured output.
		path = "./var/rostercal.ics"
	}
	return &Writer{path: path, now: time.Now}
}

// Path is the calendar file the writer publishes to.
func (w *Writer) Path() string { return w.path }

// Write stores body at the writer's path unless the previous write had the
// same hash and the file is still present.
func (w *Writer) Write(body []byte) (WriteResult, error) {
	if len(body) == 0 {
		return WriteResult{}, errors.New("refusing to write empty calendar")
	}

	sum := sha256.Sum256(body)
	res := WriteResult{SHA256: hex.EncodeToString(sum[:])}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return res, err
	}

	meta, err := w.loadMeta()
	if err == nil && meta.SHA256 == res.SHA256 {
		if st, statErr := os.Stat(w.path); statErr == nil && st.Size() == int64(len(body)) {
			appLog.Info("ics output unchanged", "path", w.path, "sha256", res.SHA256[:12])
			return res, nil
		}
	}

	// Body first so the meta never describes content that is not on disk.
	if err := writeFileAtomic(w.path, body, 0o644); err != nil {
		return res, err
	}
	meta = writeMeta{SHA256: res.SHA256, Size: len(body), UpdatedAt: w.now().UTC()}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return res, err
	}
	if err := writeFileAtomic(w.metaPath(), data, 0o600); err != nil {
		// The calendar itself is published; a stale meta only costs a rewrite.
		appLog.Error("ics meta save failed", err, "path", w.metaPath())
	}

	res.Changed = true
	appLog.Info("ics output written", "path", w.path, "bytes", len(body), "sha256", res.SHA256[:12])
	return res, nil
}

func (w *Writer) metaPath() string {
	return w.path + ".meta.json"
}

func (w *Writer) loadMeta() (writeMeta, error) {
	var meta writeMeta
	data, err := os.ReadFile(w.metaPath())
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return writeMeta{}, err
	}
	return meta, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
