package engine

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeGraphFile(t *testing.T, dir string, n, entry uint32, offsets []uint64, neighbors []uint32) string {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, n)
	binary.Write(&buf, binary.LittleEndian, entry)
	binary.Write(&buf, binary.LittleEndian, uint64(len(neighbors)))
	for _, o := range offsets {
		binary.Write(&buf, binary.LittleEndian, o)
	}
	for _, nb := range neighbors {
		binary.Write(&buf, binary.LittleEndian, nb)
	}

	path := filepath.Join(dir, "graph.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writePayloadFile(t *testing.T, dir string, n, d uint32, vectors []float32) string {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, n)
	binary.Write(&buf, binary.LittleEndian, d)

	const headerFields = 4 + 4
	const alignBytes = 64
	bodyOffset := (headerFields + alignBytes - 1) / alignBytes * alignBytes
	buf.Write(make([]byte, bodyOffset-buf.Len()))
	for _, v := range vectors {
		binary.Write(&buf, binary.LittleEndian, v)
	}

	path := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// singleNodeEngine opens an engine over a one-node, self-loop-free graph
// with dimension d, for tests that only care about parameter validation.
func singleNodeEngine(t *testing.T, d uint32) *Engine {
	t.Helper()
	dir := t.TempDir()
	graphPath := writeGraphFile(t, dir, 1, 0, []uint64{0, 0}, nil)
	payloadPath := writePayloadFile(t, dir, 1, d, make([]float32, d))

	e, err := Open(WithGraphFile(graphPath), WithPayloadFile(payloadPath), WithMetrics(false))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func asQueryError(t *testing.T, err error) *QueryError {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("expected *QueryError, got %T: %v", err, err)
	}
	return qerr
}

// Open must reject a graph/payload pair whose node counts disagree,
// classified as malformed input (§7) rather than a generic error.
func TestOpenRejectsShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeGraphFile(t, dir, 3, 0, []uint64{0, 1, 2, 2}, []uint32{1, 0})
	payloadPath := writePayloadFile(t, dir, 2, 8, make([]float32, 2*8))

	_, err := Open(WithGraphFile(graphPath), WithPayloadFile(payloadPath))
	qerr := asQueryError(t, err)
	if qerr.Code != ErrCodeMalformedInput {
		t.Fatalf("expected ErrCodeMalformedInput, got %v", qerr.Code)
	}
}

// SearchDetailed must reject a query whose dimension does not match the
// corpus, classified as an invalid parameter (§7).
func TestSearchDetailedRejectsQueryDimensionMismatch(t *testing.T) {
	e := singleNodeEngine(t, 8)

	_, _, _, err := e.SearchDetailed(make([]float32, 4), QueryParams{K: 1, BeamWidth: 1})
	qerr := asQueryError(t, err)
	if qerr.Code != ErrCodeInvalidParams {
		t.Fatalf("expected ErrCodeInvalidParams, got %v", qerr.Code)
	}
}

// SearchDetailed must reject k <= 0.
func TestSearchDetailedRejectsNonPositiveK(t *testing.T) {
	e := singleNodeEngine(t, 8)

	_, _, _, err := e.SearchDetailed(make([]float32, 8), QueryParams{K: 0, BeamWidth: 1})
	qerr := asQueryError(t, err)
	if qerr.Code != ErrCodeInvalidParams {
		t.Fatalf("expected ErrCodeInvalidParams, got %v", qerr.Code)
	}
}

// SearchDetailed must reject BeamWidth < K.
func TestSearchDetailedRejectsBeamWidthBelowK(t *testing.T) {
	e := singleNodeEngine(t, 8)

	_, _, _, err := e.SearchDetailed(make([]float32, 8), QueryParams{K: 4, BeamWidth: 2})
	qerr := asQueryError(t, err)
	if qerr.Code != ErrCodeInvalidParams {
		t.Fatalf("expected ErrCodeInvalidParams, got %v", qerr.Code)
	}
}

// resolve must derive CatapultCapacity = 4*W and CatapultReinject =
// max(1, W/8) when the caller leaves both at zero, per SPEC_FULL.md §9's
// open-question resolution.
func TestResolveDerivesCatapultDefaults(t *testing.T) {
	e := singleNodeEngine(t, 8)

	params := e.resolve(QueryParams{K: 1, BeamWidth: 32})
	if params.CatapultCapacity != 128 {
		t.Fatalf("expected CatapultCapacity=128, got %d", params.CatapultCapacity)
	}
	if params.CatapultReinject != 4 {
		t.Fatalf("expected CatapultReinject=4, got %d", params.CatapultReinject)
	}

	// W/8 rounds down to 0; the derivation must floor it at 1.
	small := e.resolve(QueryParams{K: 1, BeamWidth: 4})
	if small.CatapultCapacity != 16 {
		t.Fatalf("expected CatapultCapacity=16, got %d", small.CatapultCapacity)
	}
	if small.CatapultReinject != 1 {
		t.Fatalf("expected CatapultReinject floored to 1, got %d", small.CatapultReinject)
	}

	// Explicit non-zero values must be left untouched.
	explicit := e.resolve(QueryParams{K: 1, BeamWidth: 32, CatapultCapacity: 7, CatapultReinject: 2})
	if explicit.CatapultCapacity != 7 || explicit.CatapultReinject != 2 {
		t.Fatalf("expected explicit catapult params preserved, got %+v", explicit)
	}
}
