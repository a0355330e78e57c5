package channel

// recvBuffer accumulates partial transport reads until complete frames can
// be cut from the front. It is owned exclusively by the inbound processing
// path; consuming advances an offset instead of reslicing so that steady
// traffic does not reallocate per frame.
type recvBuffer struct {
	data []byte
	off  int
}

func (b *recvBuffer) Len() int {
	return len(b.data) - b.off
}

func (b *recvBuffer) Bytes() []byte {
	return b.data[b.off:]
}

func (b *recvBuffer) Append(chunk []byte) {
	if b.off > 0 && b.off >= len(b.data)/2 {
		b.compact()
	}
	b.data = append(b.data, chunk...)
}

// Consume drops n bytes from the front. The caller must not hold slices
// returned by Bytes across a later Append.
func (b *recvBuffer) Consume(n int) {
	b.off += n
	if b.off >= len(b.data) {
		b.Discard()
	}
}

// Discard drops everything, including the backing array.
func (b *recvBuffer) Discard() {
	b.data = nil
	b.off = 0
}

func (b *recvBuffer) compact() {
	n := copy(b.data, b.data[b.off:])
	b.data = b.data[:n]
	b.off = 0
}
