package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// readInt32Volume reads n little-endian int32 values from path. The file
// must hold exactly n values.
func readInt32Volume(path string, n int) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open volume: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat volume: %w", err)
	}
	if want := int64(n) * 4; info.Size() != want {
		return nil, fmt.Errorf("%s holds %d bytes, want %d for %d voxels", path, info.Size(), want, n)
	}

	values := make([]int32, n)
	if err := binary.Read(bufio.NewReader(f), binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("failed to read volume: %w", err)
	}
	return values, nil
}

// writeInt32Volume writes values to path as little-endian int32.
func writeInt32Volume(path string, values []int32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create volume: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, values); err != nil {
		f.Close()
		return fmt.Errorf("failed to write volume: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write volume: %w", err)
	}
	return f.Close()
}
