package channel

import (
	"bytes"
	"testing"
)

func TestRecvBufferConsumeFromFront(t *testing.T) {
	var b recvBuffer
	b.Append([]byte("abcdef"))
	b.Append([]byte("ghi"))
	if b.Len() != 9 {
		t.Fatalf("len=%d want 9", b.Len())
	}
	b.Consume(4)
	if !bytes.Equal(b.Bytes(), []byte("efghi")) {
		t.Fatalf("unexpected remainder %q", b.Bytes())
	}
	b.Consume(5)
	if b.Len() != 0 || b.data != nil {
		t.Fatalf("fully consumed buffer must be released")
	}
}

func TestRecvBufferDiscard(t *testing.T) {
	var b recvBuffer
	b.Append(bytes.Repeat([]byte{'x'}, 1024))
	b.Consume(100)
	b.Discard()
	if b.Len() != 0 || b.off != 0 || b.data != nil {
		t.Fatalf("discard left state behind: len=%d off=%d", b.Len(), b.off)
	}
}

func TestRecvBufferCompaction(t *testing.T) {
	var b recvBuffer
	b.Append([]byte("0123456789"))
	b.Consume(8)
	// Next append compacts: the retained tail must survive.
	b.Append([]byte("AB"))
	if !bytes.Equal(b.Bytes(), []byte("89AB")) {
		t.Fatalf("unexpected contents %q", b.Bytes())
	}
	if b.off != 0 {
		t.Fatalf("expected compaction, off=%d", b.off)
	}
}
