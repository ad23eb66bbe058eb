package store

import (
	"fmt"

	"github.com/golang/snappy"
)

// Algorithm identifies the snapshot payload compression
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// ParseAlgorithm parses a compression name
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "snappy":
		return Snappy, nil
	case "none":
		return None, nil
	}
	return None, fmt.Errorf("unsupported compression: %q (supported: none, snappy)", s)
}

// Codec compresses snapshot payloads
type Codec interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
	Algorithm() Algorithm
}

// CodecFor returns the codec of an algorithm
func CodecFor(algo Algorithm) (Codec, error) {
	switch algo {
	case None:
		return rawCodec{}, nil
	case Snappy:
		return snappyCodec{}, nil
	}
	return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
}

type rawCodec struct{}

func (rawCodec) Encode(data []byte) ([]byte, error) { return data, nil }
func (rawCodec) Decode(data []byte) ([]byte, error) { return data, nil }
func (rawCodec) Algorithm() Algorithm               { return None }

type snappyCodec struct{}

func (snappyCodec) Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	return snappy.Encode(nil, data), nil
}

func (snappyCodec) Decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decode failed: %w", err)
	}
	return out, nil
}

func (snappyCodec) Algorithm() Algorithm { return Snappy }
