package value

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// Values cross process boundaries inside the document cache blob, so
// they carry a compact self-describing binary form: a kind byte followed
// by the variant payload. Lengths and counts are uvarints.

// MarshalBinary implements encoding.BinaryMarshaler.
func (v Value) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (v *Value) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	decoded, err := decode(r)
	if err != nil {
		return err
	}
	if r.Len() != 0 {
		return fmt.Errorf("value: %d trailing bytes", r.Len())
	}
	*v = decoded
	return nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(v.kind))
	switch v.kind {
	case KindNull:
	case KindBool:
		if v.b {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case KindNumber:
		var raw [8]byte
		binary.LittleEndian.PutUint64(raw[:], math.Float64bits(v.n))
		buf.Write(raw[:])
	case KindString:
		writeString(buf, v.s)
	case KindDate:
		if v.hasTime {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		ts, err := v.t.MarshalBinary()
		if err != nil {
			return err
		}
		writeBytes(buf, ts)
	case KindList:
		writeUvarint(buf, uint64(len(v.list)))
		for _, item := range v.list {
			if err := item.encode(buf); err != nil {
				return err
			}
		}
	case KindMap:
		writeUvarint(buf, uint64(len(v.m)))
		for _, k := range v.Keys() {
			writeString(buf, k)
			if err := v.m[k].encode(buf); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("value: cannot encode kind %d", v.kind)
	}
	return nil
}

func decode(r *bytes.Reader) (Value, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return Null(), err
	}
	switch Kind(kind) {
	case KindNull:
		return Null(), nil
	case KindBool:
		b, err := r.ReadByte()
		if err != nil {
			return Null(), err
		}
		return Bool(b != 0), nil
	case KindNumber:
		var raw [8]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return Null(), err
		}
		return Number(math.Float64frombits(binary.LittleEndian.Uint64(raw[:]))), nil
	case KindString:
		s, err := readString(r)
		if err != nil {
			return Null(), err
		}
		return String(s), nil
	case KindDate:
		hasTime, err := r.ReadByte()
		if err != nil {
			return Null(), err
		}
		raw, err := readBytes(r)
		if err != nil {
			return Null(), err
		}
		var t time.Time
		if err := t.UnmarshalBinary(raw); err != nil {
			return Null(), err
		}
		if hasTime != 0 {
			return Datetime(t), nil
		}
		return Date(t), nil
	case KindList:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return Null(), err
		}
		items := make([]Value, 0, n)
		for i := uint64(0); i < n; i++ {
			item, err := decode(r)
			if err != nil {
				return Null(), err
			}
			items = append(items, item)
		}
		return List(items), nil
	case KindMap:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return Null(), err
		}
		m := make(map[string]Value, n)
		for i := uint64(0); i < n; i++ {
			k, err := readString(r)
			if err != nil {
				return Null(), err
			}
			item, err := decode(r)
			if err != nil {
				return Null(), err
			}
			m[k] = item
		}
		return Map(m), nil
	}
	return Null(), fmt.Errorf("value: unknown kind byte %d", kind)
}

func writeUvarint(buf *bytes.Buffer, n uint64) {
	var raw [binary.MaxVarintLen64]byte
	buf.Write(raw[:binary.PutUvarint(raw[:], n)])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func readString(r *bytes.Reader) (string, error) {
	raw, err := readBytes(r)
	return string(raw), err
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("value: truncated payload")
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
