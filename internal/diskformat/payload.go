package diskformat

import (
	"encoding/binary"
	"fmt"

	"github.com/mrandl/catapult/internal/kernel"
	"github.com/mrandl/catapult/internal/payload"
)

// payloadHeaderFields is the fixed-size prefix of the graph payload
// file: u32 N, u32 D.
const payloadHeaderFields = 4 + 4

// LoadPayload memory-maps path and parses it as the graph payload file
// format (§6.2): a little-endian header (N, D) followed by padding to a
// 64-byte-aligned body offset, then N*D float32 values. D must be a
// multiple of the kernel's lane count.
func LoadPayload(path string) (*payload.Store, func() error, error) {
	data, closeFn, err := mmapFile(path)
	if err != nil {
		return nil, nil, err
	}

	if len(data) < payloadHeaderFields {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: payload file %q truncated: smaller than header", path)
	}

	n := int(binary.LittleEndian.Uint32(data[0:4]))
	d := int(binary.LittleEndian.Uint32(data[4:8]))

	if d <= 0 || d%kernel.Lanes != 0 {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: payload file %q has dimension %d, must be a positive multiple of %d", path, d, kernel.Lanes)
	}

	bodyOffset := alignUp(payloadHeaderFields, payload.AlignBytes)
	want := bodyOffset + 4*n*d
	if len(data) < want {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: payload file %q truncated: have %d bytes, want %d", path, len(data), want)
	}

	vectors := alignedFloat32Slice(data[bodyOffset:], n*d)

	store, err := payload.New(vectors, n, d)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("diskformat: validating payload file %q: %w", path, err)
	}

	return store, closeFn, nil
}

// alignUp rounds n up to the next multiple of align.
func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

// ValidateShapeMatch checks the N*D mismatch error kind from §7: the
// graph file's node count must match the payload's vector count.
func ValidateShapeMatch(graphN, payloadN int) error {
	if graphN != payloadN {
		return fmt.Errorf("diskformat: graph node_count=%d does not match payload N=%d", graphN, payloadN)
	}
	return nil
}
