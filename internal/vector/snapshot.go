package vector

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrNoSnapshot is returned by LoadSnapshot when no snapshot exists at the path.
	ErrNoSnapshot = errors.New("vector snapshot not found")
	// ErrCorruptSnapshot is returned when the snapshot header or records do not fit the file.
	ErrCorruptSnapshot = errors.New("vector snapshot is corrupt")
)

const snapshotHeaderSize = 8

// SaveSnapshot writes ids and their vectors to path. The directory is created if needed and the
// file is replaced atomically. Format: dimension (4), n (4), then per vector: idLen (4), id bytes,
// vector (dimension*4 bytes), all little-endian.
func SaveSnapshot(path string, dimensions int, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := writeSnapshot(w, dimensions, ids, vectors); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func writeSnapshot(w io.Writer, dimensions int, ids []string, vectors [][]float32) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range ids {
		if len(vectors[i]) != dimensions {
			return fmt.Errorf("%w: vector %d has %d, expected %d", ErrDimensionMismatch, i, len(vectors[i]), dimensions)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(id))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := io.WriteString(w, id); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := w.Write(EncodeFloat32s(vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. The stored dimension must equal
// dimensions. Returns ErrNoSnapshot when the file does not exist and ErrCorruptSnapshot when
// the declared counts and lengths do not fit in the file, before allocating for them.
func LoadSnapshot(path string, dimensions int) ([]string, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNoSnapshot
		}
		return nil, nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat snapshot: %w", err)
	}
	r := bufio.NewReader(f)

	var dim, n uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, nil, fmt.Errorf("%w: read dimensions: %v", ErrCorruptSnapshot, err)
	}
	if int(dim) != dimensions {
		return nil, nil, fmt.Errorf("%w: snapshot has %d, expected %d", ErrDimensionMismatch, dim, dimensions)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil, fmt.Errorf("%w: read count: %v", ErrCorruptSnapshot, err)
	}

	// Every record holds at least its id length and its vector.
	remaining := info.Size() - snapshotHeaderSize
	vecBytes := int64(dimensions) * 4
	if int64(n)*(4+vecBytes) > remaining {
		return nil, nil, fmt.Errorf("%w: %d vectors of dimension %d do not fit in %d bytes", ErrCorruptSnapshot, n, dimensions, info.Size())
	}

	ids := make([]string, 0, n)
	vectors := make([][]float32, 0, n)
	buf := make([]byte, vecBytes)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return nil, nil, fmt.Errorf("%w: read id len: %v", ErrCorruptSnapshot, err)
		}
		remaining -= 4
		if int64(idLen)+vecBytes > remaining {
			return nil, nil, fmt.Errorf("%w: record %d id length %d exceeds file", ErrCorruptSnapshot, i, idLen)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return nil, nil, fmt.Errorf("%w: read id: %v", ErrCorruptSnapshot, err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, nil, fmt.Errorf("%w: read vector: %v", ErrCorruptSnapshot, err)
		}
		remaining -= int64(idLen) + vecBytes
		ids = append(ids, string(idBytes))
		vectors = append(vectors, DecodeFloat32s(buf))
	}
	return ids, vectors, nil
}
