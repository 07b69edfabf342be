package sam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// AuxFields is a typed bag of auxiliary tags backed by the record's raw tag
// byte range. All accessors return values by copy; the raw buffer itself is
// never exposed, per the resource-ownership policy that tag mutation may
// invalidate any previously returned view into it.
type AuxFields struct {
	raw []byte
}

// NewAuxFields wraps an existing encoded tag byte range (e.g. sliced
// directly out of a decoded alignment's raw data).
func NewAuxFields(raw []byte) AuxFields { return AuxFields{raw: append([]byte(nil), raw...)} }

// Bytes returns a copy of the encoded tag area, suitable for writing back to
// disk.
func (a AuxFields) Bytes() []byte { return append([]byte(nil), a.raw...) }

type auxEntry struct {
	tag        [2]byte
	typeCode   byte
	start, end int // byte range of the value (post type-code)
}

// scan walks the tag area once, returning the byte range of every entry.
func (a AuxFields) scan() ([]auxEntry, error) {
	var entries []auxEntry
	i := 0
	for i < len(a.raw) {
		if i+3 > len(a.raw) {
			return nil, newDecodeError(TruncatedTag, "sam: truncated tag entry")
		}
		tag := [2]byte{a.raw[i], a.raw[i+1]}
		typeCode := a.raw[i+2]
		valStart := i + 3
		n, err := valueLen(a.raw, valStart, typeCode)
		if err != nil {
			return nil, err
		}
		entries = append(entries, auxEntry{tag: tag, typeCode: typeCode, start: valStart, end: valStart + n})
		i = valStart + n
	}
	return entries, nil
}

// valueLen returns the byte length of a tag value of the given type code,
// starting at raw[off:].
func valueLen(raw []byte, off int, typeCode byte) (int, error) {
	switch typeCode {
	case 'A', 'c', 'C':
		return fixedLen(raw, off, 1)
	case 's', 'S':
		return fixedLen(raw, off, 2)
	case 'i', 'I', 'f':
		return fixedLen(raw, off, 4)
	case 'Z', 'H':
		idx := bytes.IndexByte(raw[off:], 0)
		if idx < 0 {
			return 0, newDecodeError(UnterminatedTag, "sam: unterminated %c-type tag value", typeCode)
		}
		return idx + 1, nil
	case 'B':
		if off+5 > len(raw) {
			return 0, newDecodeError(TruncatedTagArray, "sam: truncated B-type tag header")
		}
		sub := raw[off]
		count := int(binary.LittleEndian.Uint32(raw[off+1 : off+5]))
		elemSize, err := subtypeSize(sub)
		if err != nil {
			return 0, err
		}
		total := 5 + count*elemSize
		if off+total > len(raw) {
			return 0, newDecodeError(TruncatedTagArray, "sam: truncated B-type tag array")
		}
		return total, nil
	default:
		return 0, newDecodeError(UnknownTagType, "sam: unknown tag type code %q", typeCode)
	}
}

func fixedLen(raw []byte, off, n int) (int, error) {
	if off+n > len(raw) {
		return 0, newDecodeError(TruncatedTag, "sam: truncated tag value")
	}
	return n, nil
}

func subtypeSize(sub byte) (int, error) {
	switch sub {
	case 'c', 'C':
		return 1, nil
	case 's', 'S':
		return 2, nil
	case 'i', 'I', 'f':
		return 4, nil
	default:
		return 0, newDecodeError(UnknownTagType, "sam: unknown B-array subtype %q", sub)
	}
}

func tagBytes(tag string) [2]byte {
	return [2]byte{tag[0], tag[1]}
}

func (a AuxFields) find(tag string) (auxEntry, bool) {
	entries, err := a.scan()
	if err != nil {
		return auxEntry{}, false
	}
	want := tagBytes(tag)
	for _, e := range entries {
		if e.tag == want {
			return e, true
		}
	}
	return auxEntry{}, false
}

// HasTag reports whether tag is present.
func (a AuxFields) HasTag(tag string) bool {
	_, ok := a.find(tag)
	return ok
}

// GetTagType returns the raw type code of tag.
func (a AuxFields) GetTagType(tag string) (byte, bool) {
	e, ok := a.find(tag)
	if !ok {
		return 0, false
	}
	return e.typeCode, true
}

// GetInt returns tag's value widened and sign-extended to int64. It reports
// false if the tag is absent or is not an integer-compatible type (A, c, C,
// s, S, i, or I), per the documented semantics: "tag absent -> false; tag
// present but type-incompatible -> false; tag present and decoded -> true".
func (a AuxFields) GetInt(tag string) (int64, bool) {
	e, ok := a.find(tag)
	if !ok {
		return 0, false
	}
	v := a.raw[e.start:e.end]
	switch e.typeCode {
	case 'A':
		return int64(v[0]), true
	case 'c':
		return int64(int8(v[0])), true
	case 'C':
		return int64(v[0]), true
	case 's':
		return int64(int16(binary.LittleEndian.Uint16(v))), true
	case 'S':
		return int64(binary.LittleEndian.Uint16(v)), true
	case 'i':
		return int64(int32(binary.LittleEndian.Uint32(v))), true
	case 'I':
		return int64(binary.LittleEndian.Uint32(v)), true
	default:
		return 0, false
	}
}

// GetFloat returns tag's value as a float32. Reports false unless tag is
// present with type code 'f'.
func (a AuxFields) GetFloat(tag string) (float32, bool) {
	e, ok := a.find(tag)
	if !ok || e.typeCode != 'f' {
		return 0, false
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(a.raw[e.start:e.end])), true
}

// GetString returns tag's value as a string. Reports false unless tag is
// present with type code 'Z' or 'H'.
func (a AuxFields) GetString(tag string) (string, bool) {
	e, ok := a.find(tag)
	if !ok || (e.typeCode != 'Z' && e.typeCode != 'H') {
		return "", false
	}
	return string(a.raw[e.start : e.end-1]), true
}

// ArrayValue is the decoded form of a 'B'-type tag.
type ArrayValue struct {
	SubType byte
	Ints    []int64   // populated when SubType is an integer code
	Floats  []float32 // populated when SubType == 'f'
}

// GetArray returns tag's decoded array value. Reports false unless tag is
// present with type code 'B'.
func (a AuxFields) GetArray(tag string) (ArrayValue, bool) {
	e, ok := a.find(tag)
	if !ok || e.typeCode != 'B' {
		return ArrayValue{}, false
	}
	v := a.raw[e.start:e.end]
	sub := v[0]
	count := int(binary.LittleEndian.Uint32(v[1:5]))
	elemSize, _ := subtypeSize(sub)
	out := ArrayValue{SubType: sub}
	body := v[5:]
	for i := 0; i < count; i++ {
		elem := body[i*elemSize : (i+1)*elemSize]
		switch sub {
		case 'c':
			out.Ints = append(out.Ints, int64(int8(elem[0])))
		case 'C':
			out.Ints = append(out.Ints, int64(elem[0]))
		case 's':
			out.Ints = append(out.Ints, int64(int16(binary.LittleEndian.Uint16(elem))))
		case 'S':
			out.Ints = append(out.Ints, int64(binary.LittleEndian.Uint16(elem)))
		case 'i':
			out.Ints = append(out.Ints, int64(int32(binary.LittleEndian.Uint32(elem))))
		case 'I':
			out.Ints = append(out.Ints, int64(binary.LittleEndian.Uint32(elem)))
		case 'f':
			out.Floats = append(out.Floats, math.Float32frombits(binary.LittleEndian.Uint32(elem)))
		}
	}
	return out, true
}

func encodeValue(typeCode byte, value interface{}) ([]byte, error) {
	switch typeCode {
	case 'A':
		return []byte{byte(value.(int64))}, nil
	case 'c':
		return []byte{byte(int8(value.(int64)))}, nil
	case 'C':
		return []byte{byte(uint8(value.(int64)))}, nil
	case 's':
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(int16(value.(int64))))
		return b, nil
	case 'S':
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(value.(int64)))
		return b, nil
	case 'i':
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(int32(value.(int64))))
		return b, nil
	case 'I':
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(value.(int64)))
		return b, nil
	case 'f':
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(value.(float32)))
		return b, nil
	case 'Z', 'H':
		s := value.(string)
		b := make([]byte, len(s)+1)
		copy(b, s)
		return b, nil
	case 'B':
		av := value.(ArrayValue)
		elemSize, err := subtypeSize(av.SubType)
		if err != nil {
			return nil, err
		}
		var count int
		if av.SubType == 'f' {
			count = len(av.Floats)
		} else {
			count = len(av.Ints)
		}
		b := make([]byte, 5+count*elemSize)
		b[0] = av.SubType
		binary.LittleEndian.PutUint32(b[1:5], uint32(count))
		for i := 0; i < count; i++ {
			elem := b[5+i*elemSize : 5+(i+1)*elemSize]
			switch av.SubType {
			case 'c':
				elem[0] = byte(int8(av.Ints[i]))
			case 'C':
				elem[0] = byte(uint8(av.Ints[i]))
			case 's':
				binary.LittleEndian.PutUint16(elem, uint16(int16(av.Ints[i])))
			case 'S':
				binary.LittleEndian.PutUint16(elem, uint16(av.Ints[i]))
			case 'i':
				binary.LittleEndian.PutUint32(elem, uint32(int32(av.Ints[i])))
			case 'I':
				binary.LittleEndian.PutUint32(elem, uint32(av.Ints[i]))
			case 'f':
				binary.LittleEndian.PutUint32(elem, math.Float32bits(av.Floats[i]))
			}
		}
		return b, nil
	default:
		return nil, fmt.Errorf("sam: unknown tag type code %q", typeCode)
	}
}

// AddTag appends a new tag entry. It fails if tag is already present or
// typeCode is not one of the known type codes.
func (a *AuxFields) AddTag(tag string, typeCode byte, value interface{}) error {
	if len(tag) != 2 {
		return fmt.Errorf("sam: tag name must be 2 characters, got %q", tag)
	}
	if a.HasTag(tag) {
		return fmt.Errorf("sam: tag %q already present", tag)
	}
	encoded, err := encodeValue(typeCode, value)
	if err != nil {
		return err
	}
	entry := append([]byte{tag[0], tag[1], typeCode}, encoded...)
	a.raw = append(a.raw, entry...)
	return nil
}

// EditTag replaces tag's value (removing it first if present), succeeding
// even if the tag was absent.
func (a *AuxFields) EditTag(tag string, typeCode byte, value interface{}) error {
	a.RemoveTag(tag)
	return a.AddTag(tag, typeCode, value)
}

// RemoveTag splices tag's bytes out of the tag area, reporting whether it
// was present.
func (a *AuxFields) RemoveTag(tag string) bool {
	entries, err := a.scan()
	if err != nil {
		return false
	}
	want := tagBytes(tag)
	for _, e := range entries {
		if e.tag == want {
			entryStart := e.start - 3
			a.raw = append(a.raw[:entryStart], a.raw[e.end:]...)
			return true
		}
	}
	return false
}
