package dataset

import (
	"bytes"
	"encoding/binary"
	"math"

	"golang.org/x/text/unicode/norm"
)

// canonicalBytes produces the canonical byte encoding of a table for
// fingerprinting. The encoding is fully deterministic:
//
//	uint32(len(columns))
//	per column: canonical string(name), canonical string(kind)
//	canonical string(label)
//	uint32(len(exclude)), per entry: canonical string
//	uint32(rows)
//	row-major cell values as IEEE-754 big-endian bit patterns
//
// Strings are NFC normalized and length-prefixed, so no separator byte can
// be forged by a crafted column name. Float bit patterns are used instead
// of decimal rendering so the encoding round-trips every representable
// value exactly.
func canonicalBytes(t *Table) []byte {
	var buf bytes.Buffer

	writeUint32(&buf, uint32(len(t.schema.Columns)))
	for _, col := range t.schema.Columns {
		writeString(&buf, col.Name)
		writeString(&buf, string(col.Kind))
	}
	writeString(&buf, t.schema.Label)

	writeUint32(&buf, uint32(len(t.schema.Exclude)))
	for _, name := range t.schema.Exclude {
		writeString(&buf, name)
	}

	writeUint32(&buf, uint32(t.rows))
	for row := 0; row < t.rows; row++ {
		for _, col := range t.cols {
			writeFloat64(&buf, col[row])
		}
	}

	return buf.Bytes()
}

// canonicalRowBytes encodes a row subset the same way as canonicalBytes but
// over explicit indices, for partition manifests. Indices are encoded too,
// so the same rows selected in a different order hash differently.
func canonicalRowBytes(t *Table, rows []int) []byte {
	var buf bytes.Buffer

	writeUint32(&buf, uint32(len(rows)))
	for _, r := range rows {
		writeUint32(&buf, uint32(r))
	}
	for _, r := range rows {
		for _, col := range t.cols {
			writeFloat64(&buf, col[r])
		}
	}

	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	normalized := norm.NFC.String(s)
	writeUint32(buf, uint32(len(normalized)))
	buf.WriteString(normalized)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeFloat64(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}
