package xfa

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pdfcpuReader reads XFA packets through the pdfcpu object model
type pdfcpuReader struct{}

func newPDFCPUReader() *pdfcpuReader {
	return &pdfcpuReader{}
}

func (r *pdfcpuReader) Type() ReaderType {
	return ReaderPDFCPU
}

func (r *pdfcpuReader) fail(op string, err error) error {
	return &ReaderError{Reader: ReaderPDFCPU, Op: op, Err: err}
}

func (r *pdfcpuReader) ReadXFA(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, r.fail("open", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, r.fail("read_context", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, r.fail("catalog", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, ErrNoXFA
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, r.fail("acroform", err)
	}
	if acroFormDict == nil {
		return nil, ErrNoXFA
	}

	xfaObj, found := acroFormDict.Find("XFA")
	if !found {
		return nil, ErrNoXFA
	}
	xfa, err := ctx.Dereference(xfaObj)
	if err != nil {
		return nil, r.fail("xfa", err)
	}

	// XFA is a single stream or an array alternating packet names and
	// streams
	var buf bytes.Buffer
	switch x := xfa.(type) {
	case types.StreamDict:
		if err := r.appendStream(&buf, x); err != nil {
			return nil, err
		}
	case types.Array:
		for i, item := range x {
			obj, err := ctx.Dereference(item)
			if err != nil {
				return nil, r.fail("xfa_packet", fmt.Errorf("entry %d: %w", i, err))
			}
			if sd, ok := obj.(types.StreamDict); ok {
				if err := r.appendStream(&buf, sd); err != nil {
					return nil, err
				}
			}
		}
	default:
		return nil, r.fail("xfa", fmt.Errorf("unexpected XFA entry of type %T", xfa))
	}

	if buf.Len() == 0 {
		return nil, ErrNoXFA
	}
	return buf.Bytes(), nil
}

func (r *pdfcpuReader) appendStream(buf *bytes.Buffer, sd types.StreamDict) error {
	if err := sd.Decode(); err != nil {
		return r.fail("decode", err)
	}
	buf.Write(sd.Content)
	return nil
}
