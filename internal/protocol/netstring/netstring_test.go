package netstring

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, body := range [][]byte{
		nil,
		[]byte("x"),
		[]byte("hello, world"),
		bytes.Repeat([]byte{0xAB}, 1024),
	} {
		frame := Encode(body)
		got, consumed, err := Decode(frame)
		if err != nil {
			t.Fatalf("decode %q: %v", frame[:min(len(frame), 32)], err)
		}
		if consumed != len(frame) {
			t.Fatalf("consumed=%d want=%d", consumed, len(frame))
		}
		if !bytes.Equal(got, body) {
			t.Fatalf("body mismatch: got %d bytes want %d", len(got), len(body))
		}
	}
}

func TestEncodeEmptyBody(t *testing.T) {
	if got := string(Encode(nil)); got != "0:," {
		t.Fatalf("unexpected empty frame: %q", got)
	}
}

func TestEncodeMaxBodyRoundTrip(t *testing.T) {
	body := bytes.Repeat([]byte{'z'}, MaxBodyLen)
	frame := Encode(body)
	if len(frame) != MaxFrameLen {
		t.Fatalf("frame len=%d want=%d", len(frame), MaxFrameLen)
	}
	got, consumed, err := Decode(frame)
	if err != nil || consumed != MaxFrameLen {
		t.Fatalf("decode: consumed=%d err=%v", consumed, err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("body mismatch")
	}
}

func TestDecodeIncompleteAtEveryBoundary(t *testing.T) {
	frame := Encode([]byte("partial reads are normal"))
	for cut := 0; cut < len(frame); cut++ {
		body, consumed, err := Decode(frame[:cut])
		if err != nil {
			t.Fatalf("cut=%d: unexpected error %v", cut, err)
		}
		if body != nil || consumed != 0 {
			t.Fatalf("cut=%d: expected incomplete, got consumed=%d", cut, consumed)
		}
	}
}

func TestDecodeTrailingBytesLeftAlone(t *testing.T) {
	frame := Encode([]byte("first"))
	buf := append(append([]byte{}, frame...), []byte("6:second")...)
	body, consumed, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body) != "first" || consumed != len(frame) {
		t.Fatalf("got body=%q consumed=%d", body, consumed)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"non-digit in prefix", "12a:xxx,", ErrBadLengthPrefix},
		{"empty prefix", ":abc,", ErrBadLengthPrefix},
		{"leading garbage", "x5:hello,", ErrBadLengthPrefix},
		{"missing terminator", "3:abcX", ErrMissingTerminator},
		{"prefix too long", "99999999", ErrFrameTooLarge},
		{"declared length over max", "4194305:", ErrFrameTooLarge},
		{"over max before separator", "5000000", ErrFrameTooLarge},
	}
	for _, tc := range cases {
		_, consumed, err := Decode([]byte(tc.in))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got err=%v want=%v", tc.name, err, tc.want)
		}
		if consumed != 0 {
			t.Fatalf("%s: consumed=%d on malformed input", tc.name, consumed)
		}
	}
}

func TestDecodeOversizedDeclaredLengthFailsBeforeBodyArrives(t *testing.T) {
	// The body never needs to arrive for the frame to be rejected.
	_, _, err := Decode([]byte("9999999"))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestDecodeSevenDigitPrefixStillIncomplete(t *testing.T) {
	// Exactly seven digits with no separator yet could still become
	// "4194304:..." — must wait, not fail.
	body, consumed, err := Decode([]byte("4194304"))
	if err != nil || body != nil || consumed != 0 {
		t.Fatalf("got body=%v consumed=%d err=%v", body, consumed, err)
	}
}

func TestDecodeBodyMayContainDelimiters(t *testing.T) {
	raw := []byte("5:ab,cd,extra")
	body, consumed, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body) != "ab,cd" || consumed != len("5:ab,cd,") {
		t.Fatalf("got body=%q consumed=%d", body, consumed)
	}
	if !strings.HasPrefix(string(raw[consumed:]), "extra") {
		t.Fatalf("remainder corrupted: %q", raw[consumed:])
	}
}
