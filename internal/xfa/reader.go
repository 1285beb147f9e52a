// Package xfa reads the XFA form packets embedded in PDF files and extracts
// the FormCalc scripts they carry.
package xfa

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// ReaderType names a PDF library used to read XFA packets
type ReaderType string

const (
	ReaderAuto       ReaderType = "auto"
	ReaderPDFCPU     ReaderType = "pdfcpu"
	ReaderLedongthuc ReaderType = "ledongthuc"
)

// ReaderTypes lists the accepted reader names
func ReaderTypes() []ReaderType {
	return []ReaderType{ReaderAuto, ReaderPDFCPU, ReaderLedongthuc}
}

// ParseReaderType resolves a reader name, case-insensitively
func ParseReaderType(name string) (ReaderType, error) {
	t := ReaderType(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range ReaderTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown reader %q (supported: auto, pdfcpu, ledongthuc)", name)
}

// ErrNoXFA is returned for documents without an XFA form
var ErrNoXFA = errors.New("document has no XFA form")

// ReaderError reports a failure inside one of the PDF libraries
type ReaderError struct {
	Reader ReaderType
	Op     string
	Err    error
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("%s reader error in %s: %v", e.Reader, e.Op, e.Err)
}

func (e *ReaderError) Unwrap() error {
	return e.Err
}

// PacketReader returns the XFA data of a PDF file: the XDP document, with
// packets concatenated in document order when the form is split
type PacketReader interface {
	ReadXFA(path string) ([]byte, error)
	Type() ReaderType
}

// NewPacketReader creates a reader of the given type. The auto reader tries
// pdfcpu first and falls back to ledongthuc.
func NewPacketReader(t ReaderType, debug bool) (PacketReader, error) {
	switch t {
	case ReaderPDFCPU:
		return newPDFCPUReader(), nil
	case ReaderLedongthuc:
		return newLedongthucReader(), nil
	case ReaderAuto, "":
		return &fallbackReader{
			readers: []PacketReader{newPDFCPUReader(), newLedongthucReader()},
			debug:   debug,
		}, nil
	}
	return nil, &ReaderError{Reader: t, Op: "create", Err: fmt.Errorf("unknown reader type: %s", t)}
}

// fallbackReader tries each reader in turn. A document that has no XFA
// form is not retried.
type fallbackReader struct {
	readers []PacketReader
	debug   bool
}

func (r *fallbackReader) Type() ReaderType {
	return ReaderAuto
}

func (r *fallbackReader) ReadXFA(path string) ([]byte, error) {
	var errs []error
	for _, reader := range r.readers {
		data, err := reader.ReadXFA(path)
		if err == nil {
			return data, nil
		}
		if errors.Is(err, ErrNoXFA) {
			return nil, err
		}
		if r.debug {
			log.Printf("XFA read with %s failed, trying next reader: %v", reader.Type(), err)
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
