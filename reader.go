package bencode

import (
	"bufio"
	"errors"
	"io"
)

// DefaultMaxDepth bounds list and dictionary nesting when Options.MaxDepth
// is zero.
const DefaultMaxDepth = 512

// Options configures decoding.
type Options struct {
	// StrictIntegers rejects integer text other than the canonical form
	// ("0", or an optionally negative decimal with no leading zero).
	// When false, fractional and exponent forms are truncated toward zero.
	StrictIntegers bool

	// MaxDepth limits nesting of lists and dictionaries. Zero means
	// DefaultMaxDepth; a negative value disables the limit.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Reader is a byte source with one byte of lookahead. All value decoding
// is built on ReadByte, PeekByte and UnreadByte.
type Reader struct {
	Opts Options

	src     io.ByteReader
	raw     io.Reader
	pending byte
	hasPend bool
	offset  int64
	depth   int
}

// NewReader wraps r. Readers that already implement io.ByteReader are used
// directly; anything else is buffered.
func NewReader(r io.Reader, opts Options) *Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		b := bufio.NewReader(r)
		br, r = b, b
	}
	return &Reader{Opts: opts, src: br, raw: r}
}

// ReadByte consumes one byte. It returns ErrEndOfInput when the source is
// exhausted.
func (r *Reader) ReadByte() (byte, error) {
	if r.hasPend {
		r.hasPend = false
		r.offset++
		return r.pending, nil
	}
	b, err := r.src.ReadByte()
	if err != nil {
		return 0, eof(err)
	}
	r.offset++
	return b, nil
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pending, r.hasPend = b, true
	r.offset--
	return b, nil
}

// UnreadByte returns b to the front of the stream. Only one byte may be
// pending at a time.
func (r *Reader) UnreadByte(b byte) error {
	if r.hasPend {
		return errors.New("bencode: pushback buffer full")
	}
	r.pending, r.hasPend = b, true
	r.offset--
	return nil
}

// Read implements io.Reader, draining any pushed-back byte first.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.hasPend {
		p[0] = r.pending
		r.hasPend = false
		r.offset++
		return 1, nil
	}
	n, err := r.raw.Read(p)
	r.offset += int64(n)
	return n, err
}

// Offset reports how many bytes have been consumed.
func (r *Reader) Offset() int64 { return r.offset }

// NextKind classifies the next value without consuming it.
func (r *Reader) NextKind() (Kind, error) {
	b, err := r.PeekByte()
	if err != nil {
		return Invalid, err
	}
	return Classify(b), nil
}

func eof(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrEndOfInput
	}
	return err
}
