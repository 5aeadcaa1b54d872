// Package formats provides readers and writers for depth map files.
package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Depth map format errors.
var (
	ErrTruncatedDepthMap         = errors.New("truncated depth map data")
	ErrInvalidDepthMapDimensions = errors.New("invalid depth map dimensions")
)

// Hole is the sample value marking a missing measurement.
const Hole = 0.0

// MaxDepthMapSide is the largest accepted height or width.
const MaxDepthMapSide = math.MaxInt16

// headerSize is two float64 fields: height then width.
const headerSize = 16

// initialSampleCap bounds the up-front sample allocation (8 MiB).
const initialSampleCap = 1 << 20

// FormatError reports a malformed depth map stream.
type FormatError struct {
	Offset int64 // byte offset where decoding stopped
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("depth map at byte %d: %v", e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// DepthMap is an immutable height x width grid of depth samples.
type DepthMap struct {
	height  int
	width   int
	samples []float64 // row-major
}

// Height returns the number of rows.
func (d *DepthMap) Height() int { return d.height }

// Width returns the number of columns.
func (d *DepthMap) Width() int { return d.width }

// NewDepthMap creates a depth map from row-major samples.
// The slice is copied.
func NewDepthMap(height, width int, samples []float64) (*DepthMap, error) {
	if height <= 0 || width <= 0 || height > MaxDepthMapSide || width > MaxDepthMapSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDepthMapDimensions, height, width)
	}
	if len(samples) != height*width {
		return nil, fmt.Errorf("sample count mismatch: expected %d, got %d", height*width, len(samples))
	}
	s := make([]float64, len(samples))
	copy(s, samples)
	return &DepthMap{height: height, width: width, samples: s}, nil
}

// DepthMapFromRows builds a depth map from a rectangular slice of rows.
func DepthMapFromRows(rows [][]float64) (*DepthMap, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDepthMapDimensions)
	}
	width := len(rows[0])
	samples := make([]float64, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d: expected %d samples, got %d", i, width, len(row))
		}
		samples = append(samples, row...)
	}
	return NewDepthMap(len(rows), width, samples)
}

// At returns the sample at row i, column j.
func (d *DepthMap) At(i, j int) float64 {
	return d.samples[i*d.width+j]
}

// IsHole reports whether the sample at (i, j) is the hole sentinel.
func (d *DepthMap) IsHole(i, j int) bool {
	return d.At(i, j) == Hole
}

// InBounds reports whether (i, j) addresses a sample.
func (d *DepthMap) InBounds(i, j int) bool {
	return i >= 0 && j >= 0 && i < d.height && j < d.width
}

// Row returns a copy of row i.
func (d *DepthMap) Row(i int) []float64 {
	row := make([]float64, d.width)
	copy(row, d.samples[i*d.width:(i+1)*d.width])
	return row
}

// DepthStats summarizes the samples of a depth map.
type DepthStats struct {
	Samples  int
	Holes    int
	Negative int
	Min      float64 // over measured samples
	Max      float64
}

// Stats returns sample statistics. Min and Max are zero if every sample is a hole.
func (d *DepthMap) Stats() DepthStats {
	st := DepthStats{Samples: len(d.samples)}
	first := true
	for _, v := range d.samples {
		if v == Hole {
			st.Holes++
			continue
		}
		if v < 0 {
			st.Negative++
		}
		if first {
			st.Min, st.Max = v, v
			first = false
			continue
		}
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	return st
}

// ParseDepthMap decodes a depth map stream: two little-endian float64 header
// fields (height, width) followed by height*width float64 samples, row-major.
// Trailing bytes after the last sample are ignored.
func ParseDepthMap(r io.Reader) (*DepthMap, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, &FormatError{Offset: 0, Err: fmt.Errorf("%w: reading header", ErrTruncatedDepthMap)}
	}

	h := math.Float64frombits(binary.LittleEndian.Uint64(header[0:8]))
	w := math.Float64frombits(binary.LittleEndian.Uint64(header[8:16]))
	height, width, err := headerDimensions(h, w)
	if err != nil {
		return nil, &FormatError{Offset: 0, Err: err}
	}

	// The header alone cannot be trusted for allocation: samples grow as
	// rows arrive, so a short stream fails with ErrTruncatedDepthMap.
	dm := &DepthMap{
		height:  height,
		width:   width,
		samples: make([]float64, 0, min(height*width, initialSampleCap)),
	}

	// Decode one row at a time.
	row := make([]byte, 8*width)
	for i := 0; i < height; i++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, &FormatError{
				Offset: headerSize + int64(i)*int64(len(row)),
				Err:    fmt.Errorf("%w: reading row %d of %d", ErrTruncatedDepthMap, i, height),
			}
		}
		for j := 0; j < width; j++ {
			dm.samples = append(dm.samples, math.Float64frombits(binary.LittleEndian.Uint64(row[8*j:])))
		}
	}

	return dm, nil
}

// headerDimensions truncates the header fields toward zero and validates them.
func headerDimensions(h, w float64) (int, int, error) {
	if math.IsNaN(h) || math.IsNaN(w) || math.IsInf(h, 0) || math.IsInf(w, 0) {
		return 0, 0, fmt.Errorf("%w: non-finite header %v x %v", ErrInvalidDepthMapDimensions, h, w)
	}
	h, w = math.Trunc(h), math.Trunc(w)
	if h <= 0 || w <= 0 || h > MaxDepthMapSide || w > MaxDepthMapSide {
		return 0, 0, fmt.Errorf("%w: %vx%v", ErrInvalidDepthMapDimensions, h, w)
	}
	return int(h), int(w), nil
}

// ParseDepthMapFile parses a depth map file from disk.
func ParseDepthMapFile(path string) (*DepthMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening depth map: %w", err)
	}
	defer f.Close()

	return ParseDepthMap(bufio.NewReaderSize(f, 64*1024))
}

// WriteDepthMap encodes a depth map in the format read by ParseDepthMap.
func WriteDepthMap(w io.Writer, d *DepthMap) error {
	bw := bufio.NewWriter(w)
	var b [8]byte
	put := func(v float64) error {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		_, err := bw.Write(b[:])
		return err
	}

	if err := put(float64(d.height)); err != nil {
		return err
	}
	if err := put(float64(d.width)); err != nil {
		return err
	}
	for _, v := range d.samples {
		if err := put(v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteDepthMapFile writes a depth map file to disk.
func WriteDepthMapFile(path string, d *DepthMap) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating depth map: %w", err)
	}
	if err := WriteDepthMap(f, d); err != nil {
		f.Close()
		return fmt.Errorf("writing depth map: %w", err)
	}
	return f.Close()
}
