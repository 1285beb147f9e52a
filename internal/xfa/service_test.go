package xfa

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceParseXDP(t *testing.T) {
	svc, err := NewServiceWithReader(Config{Directory: t.TempDir()}, &stubReader{name: ReaderPDFCPU})
	require.NoError(t, err)

	result, err := svc.ParseXDP(context.Background(), []byte(sampleXDP))
	require.NoError(t, err)

	assert.Equal(t, ReaderPDFCPU, result.Reader)
	assert.Equal(t, 4, result.Parsed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Scripts, 5)

	calc := result.Scripts[1]
	assert.Nil(t, calc.Error)
	assert.Equal(t, []any{map[string]any{
		"operator": "*",
		"left":     map[string]any{"id": "qty"},
		"right":    map[string]any{"id": "price"},
	}}, calc.AST)
	require.NotNil(t, calc.Report)
	assert.Equal(t, 1, calc.Report.Statements)

	util := result.Scripts[0]
	require.NotNil(t, util.Report)
	assert.Equal(t, []string{"Twice"}, util.Report.Functions)

	broken := result.Scripts[4]
	assert.Nil(t, broken.AST)
	require.NotNil(t, broken.Error)
	assert.Equal(t, "var", broken.Error.Kind)
	assert.Equal(t, 4, broken.Error.Offset)
}

func TestServiceScriptSizeLimit(t *testing.T) {
	svc, err := NewServiceWithReader(Config{Directory: t.TempDir(), MaxScriptSize: 8}, &stubReader{name: ReaderPDFCPU})
	require.NoError(t, err)

	result, err := svc.ParseXDP(context.Background(), []byte(sampleXDP))
	require.NoError(t, err)

	// Only "$ >= 0" fits
	assert.Equal(t, 1, result.Parsed)
	assert.Equal(t, 4, result.Failed)
	assert.Equal(t, "lexical", result.Scripts[1].Error.Kind)
}

func TestServiceParseXDPCancelled(t *testing.T) {
	svc, err := NewServiceWithReader(Config{Directory: t.TempDir()}, &stubReader{name: ReaderPDFCPU})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.ParseXDP(ctx, []byte(sampleXDP))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServiceScripts(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "form.pdf", buildPDF(templatePacket))

	svc, err := NewService(Config{Directory: dir, MaxFileSize: 1 << 20, Reader: ReaderAuto})
	require.NoError(t, err)
	assert.Equal(t, ReaderAuto, svc.ReaderType())

	result, err := svc.Scripts(context.Background(), "form.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.Directory(), "form.pdf"), result.Path)
	require.Len(t, result.Scripts, 1)
	assert.Equal(t, "form1.total", result.Scripts[0].SomPath)
	assert.Equal(t, "calculate", result.Scripts[0].Event)
	assert.Equal(t, []any{3.0}, result.Scripts[0].AST)
}

func TestServiceScriptsErrors(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "plain.pdf", buildPDF())
	writePDF(t, dir, "big.pdf", buildPDF(templatePacket))

	svc, err := NewService(Config{Directory: dir, MaxFileSize: 200, Reader: ReaderLedongthuc})
	require.NoError(t, err)

	_, err = svc.Scripts(context.Background(), "../outside.pdf")
	assert.Error(t, err)

	_, err = svc.Scripts(context.Background(), "missing.pdf")
	assert.Error(t, err)

	_, err = svc.Scripts(context.Background(), "big.pdf")
	assert.ErrorContains(t, err, "file too large")

	svc, err = NewService(Config{Directory: dir, Reader: ReaderLedongthuc})
	require.NoError(t, err)
	_, err = svc.Scripts(context.Background(), "plain.pdf")
	assert.True(t, errors.Is(err, ErrNoXFA))
}

func TestNewServiceErrors(t *testing.T) {
	_, err := NewService(Config{Directory: t.TempDir(), Reader: ReaderType("bogus")})
	assert.Error(t, err)

	_, err = NewService(Config{Directory: ""})
	assert.Error(t, err)
}

func TestServiceForms(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "b.pdf", buildPDF())
	writePDF(t, dir, "A.PDF", buildPDF())
	writePDF(t, dir, "notes.txt", "text")

	svc, err := NewService(Config{Directory: dir})
	require.NoError(t, err)

	forms, err := svc.Forms()
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "A.PDF", forms[0].Name)
	assert.Equal(t, "b.pdf", forms[1].Name)
	assert.Positive(t, forms[1].Size)
}
