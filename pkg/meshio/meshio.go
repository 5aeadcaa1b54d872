// Package meshio serializes depth map meshes to STL, PLY, AMF and VRML.
package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/depthlab/pkg/formats"
	"github.com/Faultbox/depthlab/pkg/mesh"
)

// ErrUnknownFormat is returned for an unsupported model format.
var ErrUnknownFormat = errors.New("unknown model format")

// Format is a mesh file format.
type Format int

// Supported formats.
const (
	STL Format = iota
	PLY
	AMF
	WRL
)

// Formats lists every supported format.
var Formats = []Format{STL, PLY, AMF, WRL}

// String returns the format name, which is also its file extension.
func (f Format) String() string {
	switch f {
	case STL:
		return "stl"
	case PLY:
		return "ply"
	case AMF:
		return "amf"
	case WRL:
		return "wrl"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// Ext returns the file extension, without the dot.
func (f Format) Ext() string { return f.String() }

// Policy returns the sample validity policy the format is written with.
// VRML output has always rejected negative samples; the others only skip holes.
func (f Format) Policy() mesh.Policy {
	if f == WRL {
		return mesh.RequirePositive
	}
	return mesh.ExcludeZero
}

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "stl":
		return STL, nil
	case "ply":
		return PLY, nil
	case "amf":
		return AMF, nil
	case "wrl", "vrml":
		return WRL, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Options controls optional output details.
type Options struct {
	// Name is the STL solid name. Defaults to DefaultSolidName.
	Name string
}

// DefaultSolidName is the STL solid name used when none is given.
const DefaultSolidName = "Lab"

func (o Options) solidName() string {
	if o.Name == "" {
		return DefaultSolidName
	}
	return o.Name
}

// Encode writes dm to w in format f.
func Encode(w io.Writer, f Format, dm *formats.DepthMap, opts Options) error {
	switch f {
	case STL:
		return WriteSTL(w, mesh.Triangulate(dm), opts.solidName())
	case PLY:
		return WritePLY(w, mesh.Triangulate(dm))
	case AMF:
		return WriteAMF(w, mesh.Triangulate(dm))
	case WRL:
		return WriteWRL(w, mesh.ScanUpward(dm, f.Policy()))
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
}

// ExportError reports a failed export to a file.
type ExportError struct {
	Format Format
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s to %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ExportFile writes dm to path in format f, creating parent directories.
// A partially written file is removed on failure.
func ExportFile(path string, f Format, dm *formats.DepthMap, opts Options) (err error) {
	defer func() {
		if err != nil {
			err = &ExportError{Format: f, Path: path, Err: err}
		}
	}()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(file, 256*1024)
	if err := Encode(bw, f, dm, opts); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

// formatFloat writes a coordinate in the shortest form that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// errWriter remembers the first write error so serializers can write
// line by line and check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s+"\n")
}
