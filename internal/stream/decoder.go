package stream

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder is an incremental UTF-8 decoder.
//
// Bytes of a multi-byte character split across two chunks are held back until the rest of the character arrives.
// Invalid sequences decode to U+FFFD and a leading byte order mark is dropped.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	started bool // first character emitted, BOM check done
}

// NewDecoder returns a [Decoder] with empty state.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode converts the next chunk of the stream into text.
func (d *Decoder) Decode(chunk []byte) (string, error) {
	text, err := d.transform(chunk, false)
	return d.stripBOM(text), err
}

// Flush finalizes the decoder, emitting any held-back bytes (as replacement characters), and resets its state.
func (d *Decoder) Flush() (string, error) {
	text, err := d.transform(nil, true)
	text = d.stripBOM(text)
	d.Reset()
	return text, err
}

// Reset discards held-back bytes and restores the initial state.
func (d *Decoder) Reset() {
	d.pending = nil
	d.started = false
	d.t.Reset()
}

// stripBOM drops a byte order mark at the very start of the stream.
func (d *Decoder) stripBOM(text string) string {
	if d.started || text == "" {
		return text
	}
	d.started = true
	return strings.TrimPrefix(text, "\uFEFF")
}

// Pending reports how many bytes are held back waiting for the rest of a character.
func (d *Decoder) Pending() int {
	return len(d.pending)
}

func (d *Decoder) transform(chunk []byte, atEOF bool) (string, error) {
	src := make([]byte, 0, len(d.pending)+len(chunk))
	src = append(src, d.pending...)
	src = append(src, chunk...)
	d.pending = nil

	out := make([]byte, 0, len(src))
	dst := make([]byte, 3*len(src)+utf8.UTFMax)

	for {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]

		switch {
		case err == nil:
			return string(out), nil
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				dst = make([]byte, 2*len(dst))
			}
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append([]byte(nil), src...)
			return string(out), nil
		default:
			return string(out), err
		}
	}
}
