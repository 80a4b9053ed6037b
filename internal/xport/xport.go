// Package xport reads and writes SAS transport (XPORT) files, versions
// 5 and 8. The format is a sequence of 80-byte card-image records:
// library and member headers, NAMESTR variable descriptors, then
// fixed-width observation records holding 8-byte IBM-format doubles and
// space-padded character fields.
//
// A document read from a file retains its raw header block, so writing
// it back without touching any cell reproduces the input byte for byte.
package xport

import (
	"math"
	"strconv"
	"strings"
)

// VarType distinguishes the two XPORT variable types. The values match
// the on-disk NAMESTR type codes.
type VarType int16

const (
	Numeric   VarType = 1
	Character VarType = 2
)

// Variable describes one column of the record set.
type Variable struct {
	Name     string
	Label    string
	Type     VarType
	Length   int // field width within an observation record
	Format   string
	Informat string
	Position int // byte offset within an observation record
}

// Document is an in-memory XPORT member: variable metadata plus rows.
type Document struct {
	Version   int // 5 or 8
	Name      string
	Label     string
	Variables []Variable
	Rows      [][]Value

	// header holds the raw records through the OBS header for documents
	// read from a file; nil for documents built in memory.
	header []byte
}

// Value is a single observation cell. Cells decoded from a file keep
// their raw field bytes so an untouched cell re-encodes exactly.
type Value struct {
	str  string
	num  float64
	raw  []byte
	char bool
}

// CharValue builds a character cell.
func CharValue(s string) Value {
	return Value{str: s, char: true}
}

// NumValue builds a numeric cell. Use math.NaN for a missing value.
func NumValue(f float64) Value {
	return Value{num: f}
}

// IsChar reports whether the cell belongs to a character variable.
func (v Value) IsChar() bool {
	return v.char
}

// Float returns the numeric cell value; NaN for missing values.
func (v Value) Float() float64 {
	return v.num
}

func (v Value) String() string {
	if v.char {
		return v.str
	}

	if math.IsNaN(v.num) {
		return "."
	}

	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// SetChar replaces a character cell's content, discarding the raw field
// bytes so the new content is encoded on the next write.
func (v *Value) SetChar(s string) {
	v.str = s
	v.char = true
	v.raw = nil
}

// recordLen is the XPORT card-image record size.
const recordLen = 80

// namestrLen is the descriptor size written by this package. Some VMS
// files use 136; the reader honors the size declared in the member
// header either way.
const namestrLen = 140

func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}

	return s + strings.Repeat(" ", width-len(s))
}

func allBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' {
			return false
		}
	}

	return true
}

// rowLength is the total width of one observation record.
func (d *Document) rowLength() int {
	end := 0

	for _, v := range d.Variables {
		if v.Position+v.Length > end {
			end = v.Position + v.Length
		}
	}

	return end
}
