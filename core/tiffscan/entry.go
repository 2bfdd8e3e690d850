// Package tiffscan locates a single tag in a TIFF-structured buffer without
// building a full directory model.
package tiffscan

import "fmt"

// DataType is the TIFF field type stored in an IFD entry.
type DataType uint16

// TIFF 6.0 field types.
const (
	Byte      DataType = 1
	Ascii     DataType = 2
	Short     DataType = 3
	Long      DataType = 4
	Rational  DataType = 5
	SByte     DataType = 6
	Undefined DataType = 7
	SShort    DataType = 8
	SLong     DataType = 9
	SRational DataType = 10
	Float     DataType = 11
	Double    DataType = 12
)

var typeNames = map[DataType]string{
	Byte:      "Byte",
	Ascii:     "Ascii",
	Short:     "Short",
	Long:      "Long",
	Rational:  "Rational",
	SByte:     "SByte",
	Undefined: "Undefined",
	SShort:    "SShort",
	SLong:     "SLong",
	SRational: "SRational",
	Float:     "Float",
	Double:    "Double",
}

var typeSizes = map[DataType]uint32{
	Byte: 1, Ascii: 1, SByte: 1, Undefined: 1,
	Short: 2, SShort: 2,
	Long: 4, SLong: 4, Float: 4,
	Rational: 8, SRational: 8, Double: 8,
}

func (t DataType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", uint16(t))
}

// Size is the byte size of one value of the type, 0 when unknown.
func (t DataType) Size() uint32 {
	return typeSizes[t]
}

// Registered tag ids the scanner is asked for.
const (
	TagXMP  uint16 = 700
	TagIPTC uint16 = 33723
)

// Entry is one 12-byte IFD directory entry.
type Entry struct {
	Tag         uint16
	Type        DataType
	Count       uint32
	ValueOffset uint32
}

// inline reports whether the entry value fits in the offset field itself.
func (e Entry) inline() bool {
	size := e.Type.Size()
	return size != 0 && uint64(size)*uint64(e.Count) <= 4
}
