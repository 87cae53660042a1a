// Package diskformat loads the two on-disk binary files the engine
// consumes: the graph metadata file (CSR adjacency + entry point) and
// the graph payload file (the corpus vectors). Both are read via mmap,
// matching the borrowed, read-only, zero-copy ownership model the
// payload and graph stores require.
package diskformat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"github.com/mrandl/catapult/internal/graphstore"
)

// graphHeaderSize is the fixed-size prefix of the graph metadata file:
// u32 node_count, u32 entry_point, u64 neighbors_total.
const graphHeaderSize = 4 + 4 + 8

// LoadGraph memory-maps path and parses it as the graph metadata file
// format (§6.1): a little-endian header (node_count, entry_point,
// neighbors_total) followed by offsets[N+1] and neighbors[E]. Every
// neighbor id is validated to be < N before the store is constructed.
func LoadGraph(path string) (*graphstore.Store, func() error, error) {
	data, closeFn, err := mmapFile(path)
	if err != nil {
		return nil, nil, err
	}

	if len(data) < graphHeaderSize {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: graph file %q truncated: smaller than header", path)
	}

	r := bytes.NewReader(data)
	var n, entryPoint uint32
	var neighborsTotal uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: reading node_count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &entryPoint); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: reading entry_point: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &neighborsTotal); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: reading neighbors_total: %w", err)
	}

	offsetsBytes := 8 * (int(n) + 1)
	neighborsBytes := 4 * int(neighborsTotal)
	want := graphHeaderSize + offsetsBytes + neighborsBytes
	if len(data) < want {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: graph file %q truncated: have %d bytes, want %d", path, len(data), want)
	}

	offsets := make([]uint64, n+1)
	off := graphHeaderSize
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint64(data[off : off+8])
		off += 8
	}

	neighbors := make([]uint32, neighborsTotal)
	for i := range neighbors {
		neighbors[i] = binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
	}

	store, err := graphstore.New(offsets, neighbors, []uint32{entryPoint})
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: validating graph file %q: %w", path, err)
	}

	return store, closeFn, nil
}

// mmapFile opens path read-only and memory-maps its full contents,
// matching the mmap primitive used throughout this lineage's memory
// layer (syscall.Mmap with MAP_SHARED, PROT_READ).
func mmapFile(path string) ([]byte, func() error, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("diskformat: opening %q: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("diskformat: stat %q: %w", path, err)
	}
	size := stat.Size()
	if size == 0 {
		f.Close()
		return nil, nil, fmt.Errorf("diskformat: %q is empty", path)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("diskformat: mmap %q: %w", path, err)
	}

	closeFn := func() error {
		if err := syscall.Munmap(data); err != nil {
			f.Close()
			return fmt.Errorf("diskformat: munmap %q: %w", path, err)
		}
		return f.Close()
	}

	return data, closeFn, nil
}

// alignedFloat32Slice reinterprets a byte slice beginning at a
// 64-byte-aligned offset as a []float32, without copying. The caller
// guarantees the offset's alignment (enforced by LoadPayload when
// parsing the payload file's header-padded body).
func alignedFloat32Slice(data []byte, count int) []float32 {
	if count == 0 {
		return nil
	}
	ptr := unsafe.Pointer(&data[0])
	return unsafe.Slice((*float32)(ptr), count)
}
