package ingest

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
)

// Minimal reader for the NetCDF classic binary format (CDF-1 and CDF-2),
// covering what ARGO profile files use: dimensions, attributes, and fixed
// or record variables of the six classic types. NetCDF-4/HDF5 files are
// rejected.

// Type is a NetCDF external data type.
type Type int32

// Classic NetCDF external types.
const (
	TypeByte   Type = 1
	TypeChar   Type = 2
	TypeShort  Type = 3
	TypeInt    Type = 4
	TypeFloat  Type = 5
	TypeDouble Type = 6
)

func (t Type) size() int {
	switch t {
	case TypeByte, TypeChar:
		return 1
	case TypeShort:
		return 2
	case TypeInt, TypeFloat:
		return 4
	case TypeDouble:
		return 8
	default:
		return 0
	}
}

// Dimension is one named dimension. A record dimension has Length 0 in the
// header; its effective length is the file's record count.
type Dimension struct {
	Name   string
	Length int
}

// Variable is one variable's metadata plus the location of its data.
type Variable struct {
	Name   string
	Type   Type
	DimIDs []int
	Attrs  map[string]any

	begin  int64
	vsize  int64
	record bool
}

// File is a parsed NetCDF classic file held in memory. ARGO profile files
// are small (tens of KB to a few MB), so whole-file reads are fine.
type File struct {
	Dims    []Dimension
	NumRecs int

	vars     map[string]*Variable
	buf      []byte
	recStart int64
	recSize  int64
	version  byte
}

const (
	tagDimension = 0x0A
	tagVariable  = 0x0B
	tagAttribute = 0x0C
)

// OpenFile reads and parses path as a NetCDF classic file.
func OpenFile(path string) (*File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	f, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("ingest: parse %s: %w", path, err)
	}
	return f, nil
}

// Parse parses an in-memory NetCDF classic file.
func Parse(buf []byte) (*File, error) {
	if len(buf) < 8 || buf[0] != 'C' || buf[1] != 'D' || buf[2] != 'F' {
		return nil, fmt.Errorf("not a NetCDF classic file")
	}
	version := buf[3]
	if version != 1 && version != 2 {
		return nil, fmt.Errorf("unsupported NetCDF version byte %d (NetCDF-4/HDF5 not supported)", version)
	}

	f := &File{
		vars:    make(map[string]*Variable),
		buf:     buf,
		version: version,
	}
	c := &cursor{buf: buf, off: 4}

	numRecs, err := c.uint32()
	if err != nil {
		return nil, err
	}
	// 0xFFFFFFFF means "numrecs unknown" (streaming write); treat as zero
	// records until proven otherwise below.
	if numRecs != 0xFFFFFFFF {
		f.NumRecs = int(numRecs)
	}

	if err := f.parseDimList(c); err != nil {
		return nil, err
	}
	// Global attributes are parsed for completeness but unused by ingestion.
	if _, err := parseAttrList(c); err != nil {
		return nil, err
	}
	if err := f.parseVarList(c); err != nil {
		return nil, err
	}

	return f, nil
}

// Var returns the named variable, or nil.
func (f *File) Var(name string) *Variable {
	return f.vars[name]
}

// cursor walks the header with bounds checking.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) uint32() (uint32, error) {
	if c.off+4 > len(c.buf) {
		return 0, fmt.Errorf("truncated header at offset %d", c.off)
	}
	v := binary.BigEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

func (c *cursor) int32() (int, error) {
	v, err := c.uint32()
	return int(int32(v)), err
}

func (c *cursor) int64() (int64, error) {
	if c.off+8 > len(c.buf) {
		return 0, fmt.Errorf("truncated header at offset %d", c.off)
	}
	v := binary.BigEndian.Uint64(c.buf[c.off:])
	c.off += 8
	return int64(v), nil
}

// name reads a length-prefixed name padded to a 4-byte boundary.
func (c *cursor) name() (string, error) {
	n, err := c.int32()
	if err != nil {
		return "", err
	}
	if n < 0 || c.off+n > len(c.buf) {
		return "", fmt.Errorf("bad name length %d at offset %d", n, c.off)
	}
	s := string(c.buf[c.off : c.off+n])
	c.off += pad4(n)
	return s, nil
}

func pad4(n int) int {
	if r := n % 4; r != 0 {
		return n + 4 - r
	}
	return n
}

func (f *File) parseDimList(c *cursor) error {
	tag, err := c.uint32()
	if err != nil {
		return err
	}
	count, err := c.int32()
	if err != nil {
		return err
	}
	if tag == 0 && count == 0 {
		return nil
	}
	if tag != tagDimension {
		return fmt.Errorf("expected dimension list tag, got 0x%X", tag)
	}

	f.Dims = make([]Dimension, count)
	for i := 0; i < count; i++ {
		name, err := c.name()
		if err != nil {
			return err
		}
		length, err := c.int32()
		if err != nil {
			return err
		}
		f.Dims[i] = Dimension{Name: name, Length: length}
	}
	return nil
}

func parseAttrList(c *cursor) (map[string]any, error) {
	tag, err := c.uint32()
	if err != nil {
		return nil, err
	}
	count, err := c.int32()
	if err != nil {
		return nil, err
	}
	if tag == 0 && count == 0 {
		return nil, nil
	}
	if tag != tagAttribute {
		return nil, fmt.Errorf("expected attribute list tag, got 0x%X", tag)
	}

	attrs := make(map[string]any, count)
	for i := 0; i < count; i++ {
		name, err := c.name()
		if err != nil {
			return nil, err
		}
		typ, err := c.int32()
		if err != nil {
			return nil, err
		}
		nelems, err := c.int32()
		if err != nil {
			return nil, err
		}

		t := Type(typ)
		width := t.size()
		if width == 0 || nelems < 0 {
			return nil, fmt.Errorf("bad attribute %q (type %d, %d elems)", name, typ, nelems)
		}
		total := width * nelems
		if c.off+total > len(c.buf) {
			return nil, fmt.Errorf("truncated attribute %q", name)
		}
		raw := c.buf[c.off : c.off+total]
		c.off += pad4(total)

		if t == TypeChar {
			attrs[name] = string(raw)
		} else {
			vals := decodeNumeric(raw, t, nelems)
			if nelems == 1 {
				attrs[name] = vals[0]
			} else {
				attrs[name] = vals
			}
		}
	}
	return attrs, nil
}

func (f *File) parseVarList(c *cursor) error {
	tag, err := c.uint32()
	if err != nil {
		return err
	}
	count, err := c.int32()
	if err != nil {
		return err
	}
	if tag == 0 && count == 0 {
		return nil
	}
	if tag != tagVariable {
		return fmt.Errorf("expected variable list tag, got 0x%X", tag)
	}

	recVars := make([]*Variable, 0, count)
	for i := 0; i < count; i++ {
		name, err := c.name()
		if err != nil {
			return err
		}
		ndims, err := c.int32()
		if err != nil {
			return err
		}
		dimIDs := make([]int, ndims)
		for j := range dimIDs {
			if dimIDs[j], err = c.int32(); err != nil {
				return err
			}
			if dimIDs[j] < 0 || dimIDs[j] >= len(f.Dims) {
				return fmt.Errorf("variable %q references unknown dimension %d", name, dimIDs[j])
			}
		}
		attrs, err := parseAttrList(c)
		if err != nil {
			return err
		}
		typ, err := c.int32()
		if err != nil {
			return err
		}
		vsize, err := c.int32()
		if err != nil {
			return err
		}
		var begin int64
		if f.version == 1 {
			b, err := c.int32()
			if err != nil {
				return err
			}
			begin = int64(b)
		} else {
			if begin, err = c.int64(); err != nil {
				return err
			}
		}

		v := &Variable{
			Name:   name,
			Type:   Type(typ),
			DimIDs: dimIDs,
			Attrs:  attrs,
			begin:  begin,
			vsize:  int64(vsize),
		}
		if ndims > 0 && f.Dims[dimIDs[0]].Length == 0 {
			v.record = true
			recVars = append(recVars, v)
		}
		if v.Type.size() == 0 {
			return fmt.Errorf("variable %q has unsupported type %d", name, typ)
		}
		f.vars[name] = v
	}

	for _, v := range recVars {
		f.recSize += v.vsize
		if f.recStart == 0 || v.begin < f.recStart {
			f.recStart = v.begin
		}
	}
	return nil
}

// sliceSize returns the number of values one record (or the whole fixed
// variable) holds, i.e. the product of the non-record dimension lengths.
func (f *File) sliceSize(v *Variable) int {
	n := 1
	for i, id := range v.DimIDs {
		if i == 0 && v.record {
			continue
		}
		n *= f.Dims[id].Length
	}
	return n
}

// totalLen returns the flattened value count of a variable.
func (f *File) totalLen(v *Variable) int {
	n := f.sliceSize(v)
	if v.record {
		return n * f.NumRecs
	}
	return n
}

// rawValues gathers a variable's bytes, stitching record slabs together.
func (f *File) rawValues(v *Variable) ([]byte, error) {
	width := v.Type.size()
	if !v.record {
		total := f.totalLen(v) * width
		if v.begin+int64(total) > int64(len(f.buf)) {
			return nil, fmt.Errorf("variable %q data extends past end of file", v.Name)
		}
		return f.buf[v.begin : v.begin+int64(total)], nil
	}

	slab := f.sliceSize(v) * width
	out := make([]byte, 0, slab*f.NumRecs)
	for r := 0; r < f.NumRecs; r++ {
		off := v.begin + int64(r)*f.recSize
		if off+int64(slab) > int64(len(f.buf)) {
			return nil, fmt.Errorf("variable %q record %d extends past end of file", v.Name, r)
		}
		out = append(out, f.buf[off:off+int64(slab)]...)
	}
	return out, nil
}

// Float64s returns a numeric variable's values flattened in row-major
// order, converted to float64.
func (f *File) Float64s(name string) ([]float64, error) {
	v := f.vars[name]
	if v == nil {
		return nil, fmt.Errorf("no variable %q", name)
	}
	if v.Type == TypeChar {
		return nil, fmt.Errorf("variable %q is char-typed", name)
	}

	raw, err := f.rawValues(v)
	if err != nil {
		return nil, err
	}
	return decodeNumeric(raw, v.Type, f.totalLen(v)), nil
}

// Strings decodes a char variable as one string per leading-dimension
// entry, with the trailing dimension as the string width. Trailing NULs
// and spaces are trimmed.
func (f *File) Strings(name string) ([]string, error) {
	v := f.vars[name]
	if v == nil {
		return nil, fmt.Errorf("no variable %q", name)
	}
	if v.Type != TypeChar {
		return nil, fmt.Errorf("variable %q is not char-typed", name)
	}
	if len(v.DimIDs) == 0 {
		return nil, fmt.Errorf("variable %q is scalar", name)
	}

	raw, err := f.rawValues(v)
	if err != nil {
		return nil, err
	}

	width := f.Dims[v.DimIDs[len(v.DimIDs)-1]].Length
	if width <= 0 {
		return []string{trimPadding(string(raw))}, nil
	}

	out := make([]string, 0, len(raw)/width)
	for i := 0; i+width <= len(raw); i += width {
		out = append(out, trimPadding(string(raw[i:i+width])))
	}
	return out, nil
}

func trimPadding(s string) string {
	return strings.TrimRight(s, "\x00 ")
}

func decodeNumeric(raw []byte, t Type, n int) []float64 {
	out := make([]float64, n)
	switch t {
	case TypeByte:
		for i := 0; i < n; i++ {
			out[i] = float64(int8(raw[i]))
		}
	case TypeShort:
		for i := 0; i < n; i++ {
			out[i] = float64(int16(binary.BigEndian.Uint16(raw[i*2:])))
		}
	case TypeInt:
		for i := 0; i < n; i++ {
			out[i] = float64(int32(binary.BigEndian.Uint32(raw[i*4:])))
		}
	case TypeFloat:
		for i := 0; i < n; i++ {
			out[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(raw[i*4:])))
		}
	case TypeDouble:
		for i := 0; i < n; i++ {
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(raw[i*8:]))
		}
	}
	return out
}
