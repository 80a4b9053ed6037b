package xport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	headerPrefix   = "HEADER RECORD*******"
	libraryMarkV5  = "LIBRARY"
	libraryMarkV8  = "LIBV8"
	memberMark     = "MEMB"
	descriptorMark = "DSC"
	namestrMarkV5  = "NAMESTR"
	namestrMarkV8  = "NAMSTV8"
	obsMark        = "OBS"
)

// Read parses a transport file holding a single member. The raw header
// block is retained on the returned Document so that Write can
// reproduce it verbatim.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading transport data: %w", err)
	}

	if len(data) < recordLen || len(data)%recordLen != 0 {
		return nil, errors.New("transport file is not a sequence of 80-byte records")
	}

	doc := &Document{}

	cur := 0
	record := func(i int) []byte { return data[i*recordLen : (i+1)*recordLen] }
	numRecords := len(data) / recordLen

	first := string(record(0))
	switch {
	case strings.HasPrefix(first, headerPrefix+libraryMarkV8):
		doc.Version = 8
	case strings.HasPrefix(first, headerPrefix+libraryMarkV5):
		doc.Version = 5
	default:
		return nil, errors.New("missing library header record")
	}

	cur++

	// Walk header records up to the NAMESTR block, capturing the member
	// descriptor size and the dataset name along the way.
	descSize := namestrLen
	nvars := -1
	afterDescriptor := false
	memberDataSeen := false

	for cur < numRecords {
		rec := string(record(cur))

		switch {
		case strings.HasPrefix(rec, headerPrefix+memberMark):
			if n, err := strconv.Atoi(strings.TrimSpace(rec[72:78])); err == nil && n > 0 {
				descSize = n
			}

		case strings.HasPrefix(rec, headerPrefix+descriptorMark):
			afterDescriptor = true

		case strings.HasPrefix(rec, headerPrefix+namestrMarkV5),
			strings.HasPrefix(rec, headerPrefix+namestrMarkV8):
			n, err := strconv.Atoi(strings.TrimSpace(rec[48:58]))
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid variable count in namestr header: %q", rec[48:58])
			}

			nvars = n

		case afterDescriptor && strings.HasPrefix(rec, "SAS     "):
			// Member data record carrying the dataset name.
			if doc.Version == 8 {
				doc.Name = strings.TrimSpace(rec[8:40])
			} else {
				doc.Name = strings.TrimSpace(rec[8:16])
			}

			afterDescriptor = false
			memberDataSeen = true

		case memberDataSeen:
			// Second member data record: modification time plus label.
			doc.Label = strings.TrimSpace(rec[32:72])
			memberDataSeen = false
		}

		cur++

		if nvars >= 0 {
			break
		}
	}

	if nvars < 0 {
		return nil, errors.New("missing namestr header record")
	}

	blockLen := nvars * descSize
	blockRecords := (blockLen + recordLen - 1) / recordLen

	if cur+blockRecords > numRecords {
		return nil, errors.New("truncated namestr block")
	}

	block := data[cur*recordLen : cur*recordLen+blockLen]
	cur += blockRecords

	doc.Variables = make([]Variable, 0, nvars)
	for i := 0; i < nvars; i++ {
		v, err := parseNamestr(block[i*descSize:(i+1)*descSize], doc.Version)
		if err != nil {
			return nil, err
		}

		doc.Variables = append(doc.Variables, v)
	}

	// Skip any label records (LABELV8/LABELV9) until the OBS header.
	obsAt := -1

	for cur < numRecords {
		if strings.HasPrefix(string(record(cur)), headerPrefix+obsMark) {
			obsAt = cur
			break
		}

		cur++
	}

	if obsAt < 0 {
		return nil, errors.New("missing observation header record")
	}

	cur = obsAt + 1
	doc.header = append([]byte(nil), data[:cur*recordLen]...)

	if err := doc.decodeRows(data[cur*recordLen:]); err != nil {
		return nil, err
	}

	return doc, nil
}

func parseNamestr(b []byte, version int) (Variable, error) {
	v := Variable{
		Type:     VarType(int16(binary.BigEndian.Uint16(b[0:2]))),
		Length:   int(int16(binary.BigEndian.Uint16(b[4:6]))),
		Name:     strings.TrimSpace(string(b[8:16])),
		Label:    strings.TrimSpace(string(b[16:56])),
		Format:   strings.TrimSpace(string(b[56:64])),
		Informat: strings.TrimSpace(string(b[72:80])),
		Position: int(int32(binary.BigEndian.Uint32(b[84:88]))),
	}

	if v.Type != Numeric && v.Type != Character {
		return v, fmt.Errorf("variable %q has unknown type %d", v.Name, v.Type)
	}

	if v.Length <= 0 {
		return v, fmt.Errorf("variable %q has invalid length %d", v.Name, v.Length)
	}

	// V8 stores names longer than 8 characters at the tail of the
	// descriptor.
	if version == 8 && len(b) >= 120 {
		if long := strings.TrimSpace(string(b[88:120])); long != "" {
			v.Name = long
		}
	}

	return v, nil
}

func (d *Document) decodeRows(data []byte) error {
	rowLen := d.rowLength()
	if rowLen <= 0 {
		return errors.New("variables describe an empty observation record")
	}

	for len(data) >= rowLen {
		if allBlank(data) {
			break // trailing record padding
		}

		row := make([]Value, len(d.Variables))

		for i, v := range d.Variables {
			field := data[v.Position : v.Position+v.Length]
			row[i] = decodeCell(field, v.Type)
		}

		d.Rows = append(d.Rows, row)
		data = data[rowLen:]
	}

	return nil
}

func decodeCell(field []byte, t VarType) Value {
	raw := append([]byte(nil), field...)

	if t == Character {
		return Value{
			str:  strings.TrimRight(string(field), " "),
			raw:  raw,
			char: true,
		}
	}

	padded := make([]byte, 8)
	copy(padded, field)

	return Value{num: ibmToFloat(padded), raw: raw}
}
