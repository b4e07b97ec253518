package token

import (
	"io"
)

// chunkSizeIn is used when streaming a payload off the wire into a sink.
const chunkSizeIn = 64 * 1024

// chunkSizeOut is used when streaming a payload from a source onto the wire.
const chunkSizeOut = 256 * 1024

// ReadExactly fills buf completely from r, translating a short read (EOF
// before buf is full) into a ProtocolError instead of io.ErrUnexpectedEOF.
func ReadExactly(r io.Reader, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		read += n
		if err != nil {
			if read < len(buf) {
				return newDisconnected()
			}
			break
		}
		if n == 0 && read < len(buf) {
			return newDisconnected()
		}
	}
	return nil
}

// ReadHeader reads one 12-byte header off r and decodes it.
func ReadHeader(r io.Reader) (Tag, uint32, error) {
	buf := make([]byte, HeaderLen)
	if err := ReadExactly(r, buf); err != nil {
		return "", 0, err
	}
	return Decode(buf)
}

// Expect reads one header off r and requires it to carry expected; it
// returns the header's value on success. A tag mismatch raises
// InvalidToken; a short read raises ProtocolError (surfaced unchanged from
// ReadHeader).
func Expect(r io.Reader, expected Tag) (uint32, error) {
	tag, value, err := ReadHeader(r)
	if err != nil {
		return 0, err
	}
	if tag != expected {
		return 0, newInvalidTokenTag(expected, tag)
	}
	return value, nil
}

// CopyIn reads exactly n bytes from r into w, in chunkSizeIn pieces. EOF
// before n bytes have been read is a ProtocolError.
func CopyIn(r io.Reader, w io.Writer, n uint32) error {
	remaining := int64(n)
	buf := make([]byte, chunkSizeIn)
	for remaining > 0 {
		want := int64(len(buf))
		if remaining < want {
			want = remaining
		}
		read, err := r.Read(buf[:want])
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return werr
			}
			remaining -= int64(read)
		}
		if err != nil {
			if remaining > 0 {
				return newDisconnected()
			}
			break
		}
		if read == 0 && remaining > 0 {
			return newDisconnected()
		}
	}
	return nil
}

// CopyOut writes exactly n bytes read from r onto w, in chunkSizeOut
// pieces, looping on partial writes until the whole payload is sent.
func CopyOut(w io.Writer, r io.Reader, n uint32) error {
	remaining := int64(n)
	buf := make([]byte, chunkSizeOut)
	for remaining > 0 {
		want := int64(len(buf))
		if remaining < want {
			want = remaining
		}
		read, rerr := r.Read(buf[:want])
		if read > 0 {
			written := 0
			for written < read {
				n, werr := w.Write(buf[written:read])
				if werr != nil {
					return werr
				}
				written += n
			}
			remaining -= int64(read)
		}
		if rerr != nil && remaining > 0 {
			return rerr
		}
	}
	return nil
}
