package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestFixedWidthRoundTrip(t *testing.T) {
	var buf []byte
	buf = WriteBE16(buf, 0x0102)
	buf = WriteLE16(buf, 0x0102)
	buf = WriteBE32(buf, 0x01020304)
	buf = WriteLE32(buf, 0x01020304)
	buf = WriteBE64(buf, 0x0102030405060708)
	buf = WriteLE64(buf, 0x0102030405060708)

	c := NewCursor(buf)
	if v, err := c.ReadBE16(); err != nil || v != 0x0102 {
		t.Fatalf("ReadBE16 = %x, %v", v, err)
	}
	if v, err := c.ReadLE16(); err != nil || v != 0x0102 {
		t.Fatalf("ReadLE16 = %x, %v", v, err)
	}
	if v, err := c.ReadBE32(); err != nil || v != 0x01020304 {
		t.Fatalf("ReadBE32 = %x, %v", v, err)
	}
	if v, err := c.ReadLE32(); err != nil || v != 0x01020304 {
		t.Fatalf("ReadLE32 = %x, %v", v, err)
	}
	if v, err := c.ReadBE64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("ReadBE64 = %x, %v", v, err)
	}
	if v, err := c.ReadLE64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("ReadLE64 = %x, %v", v, err)
	}
	if c.Remaining() != 0 {
		t.Fatalf("expected cursor exhausted, remaining=%d", c.Remaining())
	}
}

func TestReadOOB(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	if _, err := c.ReadBE32(); err == nil {
		t.Fatalf("expected READ_OOB error")
	} else {
		var ce *CodecError
		if !errors.As(err, &ce) || ce.Code != ErrReadOOB {
			t.Fatalf("expected ErrReadOOB, got %v", err)
		}
	}
}

func TestVarLenValueRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 300)
	buf := WriteVarLenValue(nil, payload)

	c := NewCursor(buf)
	got, err := c.ReadVarLenValue(1024)
	if err != nil {
		t.Fatalf("ReadVarLenValue: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestVarLenValueLenOverflow(t *testing.T) {
	buf := WriteVarLenValue(nil, make([]byte, 100))
	c := NewCursor(buf)
	if _, err := c.ReadVarLenValue(10); err == nil {
		t.Fatalf("expected LEN_OVERFLOW error")
	} else {
		var ce *CodecError
		if !errors.As(err, &ce) || ce.Code != ErrLenOverflow {
			t.Fatalf("expected ErrLenOverflow, got %v", err)
		}
	}
}

func TestVarLenValueTruncatedPayload(t *testing.T) {
	buf := WriteVarLenValue(nil, []byte("hello"))
	truncated := buf[:len(buf)-2]
	c := NewCursor(truncated)
	if _, err := c.ReadVarLenValue(1024); err == nil {
		t.Fatalf("expected READ_OOB error")
	}
}

func TestReadSliceCopiesBytes(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	c := NewCursor(src)
	got, err := c.ReadSlice(4)
	if err != nil {
		t.Fatalf("ReadSlice: %v", err)
	}
	got[0] = 0xff
	if src[0] == 0xff {
		t.Fatalf("ReadSlice must return a copy, not an alias")
	}
}
