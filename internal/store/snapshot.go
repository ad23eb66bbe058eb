package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/soltixdb/datahub/internal/records"
)

// SnapshotVersion is the only header version this build reads and writes
const SnapshotVersion uint8 = 1

var snapshotMagic = []byte("DHSN")

var (
	// ErrSnapshotVersion is returned for a snapshot written by another format version
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
	// ErrSnapshotCorrupt is returned when the header or payload cannot be read
	ErrSnapshotCorrupt = errors.New("corrupt snapshot")
)

// Snapshot is a persisted bundle with the generator settings that produced it
type Snapshot struct {
	CreatedAt time.Time       `json:"created_at"`
	Seed      uint64          `json:"seed"`
	FromYear  int             `json:"from_year"`
	ToYear    int             `json:"to_year"`
	Bundle    *records.Bundle `json:"bundle"`
}

// Header layout: magic(4) | version(1) | algorithm(1) | uvarint payload length | payload

// EncodeSnapshot serialises a snapshot as JSON compressed with algo
func EncodeSnapshot(snap *Snapshot, algo Algorithm) ([]byte, error) {
	codec, err := CodecFor(algo)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	payload, err := codec.Encode(raw)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(snapshotMagic)+2+10+len(payload))
	buf = append(buf, snapshotMagic...)
	buf = append(buf, SnapshotVersion, byte(algo))
	buf = binary.AppendUvarint(buf, uint64(len(payload)))
	return append(buf, payload...), nil
}

// DecodeSnapshot parses bytes produced by EncodeSnapshot
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < len(snapshotMagic)+2 || !bytes.Equal(data[:len(snapshotMagic)], snapshotMagic) {
		return nil, fmt.Errorf("%w: bad magic", ErrSnapshotCorrupt)
	}
	data = data[len(snapshotMagic):]
	if data[0] != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSnapshotVersion, data[0], SnapshotVersion)
	}
	codec, err := CodecFor(Algorithm(data[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	data = data[2:]

	size, n := binary.Uvarint(data)
	if n <= 0 || uint64(len(data)-n) != size {
		return nil, fmt.Errorf("%w: payload length mismatch", ErrSnapshotCorrupt)
	}
	raw, err := codec.Decode(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if snap.Bundle == nil {
		snap.Bundle = &records.Bundle{}
	}
	return &snap, nil
}

// WriteSnapshot streams an encoded snapshot to w
func WriteSnapshot(w io.Writer, snap *Snapshot, algo Algorithm) error {
	data, err := EncodeSnapshot(snap, algo)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveSnapshot writes a snapshot file atomically through a temporary file
func SaveSnapshot(path string, snap *Snapshot, algo Algorithm) error {
	data, err := EncodeSnapshot(snap, algo)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot file
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return snap, nil
}
