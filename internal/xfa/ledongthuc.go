package xfa

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ledongthucReader reads XFA packets with ledongthuc/pdf. It is more
// forgiving than pdfcpu with damaged cross-reference tables.
type ledongthucReader struct{}

func newLedongthucReader() *ledongthucReader {
	return &ledongthucReader{}
}

func (r *ledongthucReader) Type() ReaderType {
	return ReaderLedongthuc
}

func (r *ledongthucReader) fail(op string, err error) error {
	return &ReaderError{Reader: ReaderLedongthuc, Op: op, Err: err}
}

func (r *ledongthucReader) ReadXFA(path string) (data []byte, err error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, r.fail("open", err)
	}
	defer f.Close()

	// The library panics on some malformed objects
	defer func() {
		if rec := recover(); rec != nil {
			data, err = nil, r.fail("read", fmt.Errorf("panic: %v", rec))
		}
	}()

	xfa := reader.Trailer().Key("Root").Key("AcroForm").Key("XFA")
	if xfa.IsNull() {
		return nil, ErrNoXFA
	}

	var buf bytes.Buffer
	switch xfa.Kind() {
	case pdf.Stream:
		if err := r.appendStream(&buf, xfa); err != nil {
			return nil, err
		}
	case pdf.Array:
		for i := 0; i < xfa.Len(); i++ {
			item := xfa.Index(i)
			if item.Kind() != pdf.Stream {
				continue
			}
			if err := r.appendStream(&buf, item); err != nil {
				return nil, err
			}
		}
	default:
		return nil, r.fail("xfa", fmt.Errorf("unexpected XFA entry of kind %v", xfa.Kind()))
	}

	if buf.Len() == 0 {
		return nil, ErrNoXFA
	}
	return buf.Bytes(), nil
}

func (r *ledongthucReader) appendStream(buf *bytes.Buffer, v pdf.Value) error {
	rc := v.Reader()
	defer rc.Close()
	if _, err := io.Copy(buf, rc); err != nil {
		return r.fail("decode", err)
	}
	return nil
}
