package xport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"
)

// Write serializes the document. Documents read from a file re-emit
// their retained header block verbatim; documents built in memory get a
// synthesized header in the vocabulary of their Version (5 by default).
func Write(w io.Writer, doc *Document) error {
	if len(doc.Variables) == 0 {
		return fmt.Errorf("document has no variables")
	}

	var buf bytes.Buffer

	if doc.header != nil {
		buf.Write(doc.header)
	} else {
		assignPositions(doc)
		writeHeader(&buf, doc)
	}

	if err := writeRows(&buf, doc); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())

	return err
}

// assignPositions lays out variables sequentially for documents built in
// memory, leaving explicit positions alone.
func assignPositions(doc *Document) {
	pos := 0

	for i := range doc.Variables {
		if doc.Variables[i].Length <= 0 {
			doc.Variables[i].Length = 8
		}

		doc.Variables[i].Position = pos
		pos += doc.Variables[i].Length
	}
}

func writeHeader(buf *bytes.Buffer, doc *Document) {
	v8 := doc.Version == 8

	now := strings.ToUpper(time.Now().Format("02Jan06:15:04:05"))

	libMark, membMark, dscMark, nameMark, obsMark := "LIBRARY", "MEMBER ", "DSCRPTR", "NAMESTR", "OBS    "
	if v8 {
		libMark, membMark, dscMark, nameMark, obsMark = "LIBV8  ", "MEMBV8 ", "DSCPTV8", "NAMSTV8", "OBSV8  "
	}

	version := "9.4     "

	writeRecord(buf, headerPrefix+libMark+" HEADER RECORD!!!!!!!"+strings.Repeat("0", 30))
	writeRecord(buf, "SAS     SAS     SASLIB  "+version+padRight("Linux", 8)+strings.Repeat(" ", 24)+now)
	writeRecord(buf, now)

	writeRecord(buf, fmt.Sprintf("%s%s HEADER RECORD!!!!!!!%019d%s%06d",
		headerPrefix, membMark, 160, "00000", namestrLen))
	writeRecord(buf, headerPrefix+dscMark+" HEADER RECORD!!!!!!!"+strings.Repeat("0", 30))

	name := doc.Name
	if name == "" {
		name = "DATA"
	}

	if v8 {
		writeRecord(buf, "SAS     "+padRight(name, 32)+"SASDATA "+version+padRight("Linux", 8))
	} else {
		writeRecord(buf, "SAS     "+padRight(name, 8)+"SASDATA "+version+padRight("Linux", 8)+strings.Repeat(" ", 24)+now)
	}

	writeRecord(buf, now+strings.Repeat(" ", 16)+padRight(doc.Label, 40))

	writeRecord(buf, fmt.Sprintf("%s%s HEADER RECORD!!!!!!!000000%04d%s",
		headerPrefix, nameMark, len(doc.Variables), strings.Repeat("0", 20)))

	for i := range doc.Variables {
		buf.Write(encodeNamestr(&doc.Variables[i], i+1, doc.Version))
	}

	padToRecord(buf, '\x00')

	writeRecord(buf, headerPrefix+obsMark+" HEADER RECORD!!!!!!!"+strings.Repeat("0", 30))
}

func writeRecord(buf *bytes.Buffer, s string) {
	buf.WriteString(padRight(s, recordLen))
}

func padToRecord(buf *bytes.Buffer, fill byte) {
	for buf.Len()%recordLen != 0 {
		buf.WriteByte(fill)
	}
}

func encodeNamestr(v *Variable, varNum, version int) []byte {
	b := make([]byte, namestrLen)

	for i := range b {
		b[i] = ' '
	}

	binary.BigEndian.PutUint16(b[0:2], uint16(v.Type))
	binary.BigEndian.PutUint16(b[2:4], 0)
	binary.BigEndian.PutUint16(b[4:6], uint16(v.Length))
	binary.BigEndian.PutUint16(b[6:8], uint16(varNum))
	copy(b[8:16], padRight(v.Name, 8))
	copy(b[16:56], padRight(v.Label, 40))
	copy(b[56:64], padRight(v.Format, 8))
	binary.BigEndian.PutUint16(b[64:66], 0)
	binary.BigEndian.PutUint16(b[66:68], 0)
	binary.BigEndian.PutUint16(b[68:70], 0)
	copy(b[72:80], padRight(v.Informat, 8))
	binary.BigEndian.PutUint16(b[80:82], 0)
	binary.BigEndian.PutUint16(b[82:84], 0)
	binary.BigEndian.PutUint32(b[84:88], uint32(v.Position))

	for i := 88; i < namestrLen; i++ {
		b[i] = 0
	}

	if version == 8 {
		copy(b[88:120], padRight(v.Name, 32))
	}

	return b
}

func writeRows(buf *bytes.Buffer, doc *Document) error {
	rowLen := doc.rowLength()

	for rowIdx, row := range doc.Rows {
		if len(row) != len(doc.Variables) {
			return fmt.Errorf("row %d has %d cells, want %d", rowIdx, len(row), len(doc.Variables))
		}

		record := bytes.Repeat([]byte{' '}, rowLen)

		for i, v := range doc.Variables {
			encodeCell(record[v.Position:v.Position+v.Length], row[i], v.Type)
		}

		buf.Write(record)
	}

	padToRecord(buf, ' ')

	return nil
}

// encodeCell writes a cell into its fixed-width field. Cells that still
// carry their decoded raw bytes are copied through untouched.
func encodeCell(field []byte, val Value, t VarType) {
	if val.raw != nil && len(val.raw) == len(field) {
		copy(field, val.raw)
		return
	}

	if t == Character {
		copy(field, padRight(val.str, len(field)))
		return
	}

	ibm := floatToIBM(val.num)
	copy(field, ibm[:len(field)])
}
