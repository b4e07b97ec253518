package token

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		tag   Tag
		value uint32
	}{
		{TagSERR, 31},
		{TagDIST, 1},
		{TagARGC, 0},
		{TagDOTO, 0xffffffff},
	}
	for _, tt := range tests {
		raw, err := Encode(tt.tag, tt.value)
		if err != nil {
			t.Fatalf("Encode(%q, %d): %v", tt.tag, tt.value, err)
		}
		if len(raw) != HeaderLen {
			t.Fatalf("Encode(%q, %d) produced %d bytes, want %d", tt.tag, tt.value, len(raw), HeaderLen)
		}
		tag, value, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%q): %v", raw, err)
		}
		if tag != tt.tag || value != tt.value {
			t.Fatalf("round trip mismatch: got (%q, %d), want (%q, %d)", tag, value, tt.tag, tt.value)
		}
	}
}

func TestEncodeIsLowercase(t *testing.T) {
	raw, err := Encode(TagSERR, 0xAA)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte("SERR000000aa")
	if !bytes.Equal(raw, want) {
		t.Fatalf("Encode produced %q, want %q", raw, want)
	}
}

func TestDecodeIsCaseInsensitive(t *testing.T) {
	_, value, err := Decode([]byte("SERR000000AA"))
	if err != nil {
		t.Fatal(err)
	}
	if value != 0xaa {
		t.Fatalf("Decode of uppercase hex produced %d, want %d", value, 0xaa)
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	for _, raw := range [][]byte{
		[]byte("DIST0"),
		[]byte("DIST" + strings.Repeat("0", 12)),
		{},
	} {
		if _, _, err := Decode(raw); err == nil {
			t.Fatalf("Decode(%q) did not fail", raw)
		} else if _, ok := err.(*InvalidToken); !ok {
			t.Fatalf("Decode(%q) returned %T, want *InvalidToken", raw, err)
		}
	}
}

func TestEncodeRejectsNonASCIITag(t *testing.T) {
	if _, err := Encode(Tag("D\xffST"), 1); err == nil {
		t.Fatal("Encode with non-ASCII tag did not fail")
	}
}
