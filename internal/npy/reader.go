// Package npy reads the NumPy .npy v1.0 file format for the one shape
// this system needs: a float32 2-D array (Q, D), C order. This is an
// external collaborator per the core spec (the query-file reader), not
// part of the search engine itself.
package npy

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var magic = []byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

// Array holds a parsed float32 matrix of shape (Rows, Cols), row-major.
type Array struct {
	Rows, Cols int
	Data       []float32 // len == Rows*Cols
}

// Row returns a zero-copy view of row i.
func (a *Array) Row(i int) []float32 {
	off := i * a.Cols
	return a.Data[off : off+a.Cols]
}

var headerDictRe = regexp.MustCompile(`'descr'\s*:\s*'([^']+)'|'fortran_order'\s*:\s*(True|False)|'shape'\s*:\s*\(([^)]*)\)`)

// ReadFile opens path and parses it as a 2-D float32 NPY array.
func ReadFile(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("npy: opening %q: %w", path, err)
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// Read parses an NPY v1.0 stream into a 2-D float32 array.
func Read(r io.Reader) (*Array, error) {
	var m [6]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, fmt.Errorf("npy: reading magic: %w", err)
	}
	for i := range m {
		if m[i] != magic[i] {
			return nil, fmt.Errorf("npy: bad magic, not a .npy file")
		}
	}

	var version [2]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, fmt.Errorf("npy: reading version: %w", err)
	}

	var headerLen int
	switch version[0] {
	case 1:
		var l uint16
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, fmt.Errorf("npy: reading v1 header length: %w", err)
		}
		headerLen = int(l)
	case 2, 3:
		var l uint32
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, fmt.Errorf("npy: reading v2/v3 header length: %w", err)
		}
		headerLen = int(l)
	default:
		return nil, fmt.Errorf("npy: unsupported version %d.%d", version[0], version[1])
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("npy: reading header dict: %w", err)
	}

	descr, fortran, shape, err := parseHeader(string(header))
	if err != nil {
		return nil, err
	}
	if descr != "<f4" {
		return nil, fmt.Errorf("npy: unsupported dtype %q, only <f4 (little-endian float32) is supported", descr)
	}
	if fortran {
		return nil, fmt.Errorf("npy: fortran_order=True is not supported")
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("npy: expected a 2-D array, got shape %v", shape)
	}

	rows, cols := shape[0], shape[1]
	data := make([]float32, rows*cols)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("npy: reading float32 body: %w", err)
	}

	return &Array{Rows: rows, Cols: cols, Data: data}, nil
}

func parseHeader(header string) (descr string, fortran bool, shape []int, err error) {
	matches := headerDictRe.FindAllStringSubmatch(header, -1)
	if matches == nil {
		return "", false, nil, fmt.Errorf("npy: could not parse header dict %q", header)
	}

	var shapeStr string
	haveDescr, haveShape := false, false
	for _, m := range matches {
		switch {
		case m[1] != "":
			descr = m[1]
			haveDescr = true
		case m[2] != "":
			fortran = m[2] == "True"
		case m[3] != "":
			shapeStr = m[3]
			haveShape = true
		}
	}
	if !haveDescr {
		return "", false, nil, fmt.Errorf("npy: header missing descr: %q", header)
	}
	if !haveShape {
		return "", false, nil, fmt.Errorf("npy: header missing shape: %q", header)
	}

	for _, part := range strings.Split(shapeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, convErr := strconv.Atoi(part)
		if convErr != nil {
			return "", false, nil, fmt.Errorf("npy: bad shape component %q: %w", part, convErr)
		}
		shape = append(shape, n)
	}

	return descr, fortran, shape, nil
}
