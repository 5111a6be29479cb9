package soffice_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrianliechti/ingester/pkg/converter/soffice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// office writes the expected output file when run.
type office struct {
	calls int
	err   error
}

func (o *office) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	o.calls++

	if o.err != nil {
		return nil, o.err
	}

	outDir := args[len(args)-2]
	input := args[len(args)-1]

	base := filepath.Base(input)
	output := filepath.Join(outDir, base[:len(base)-len(filepath.Ext(base))]+".pdf")

	return nil, os.WriteFile(output, []byte("%PDF"), 0o644)
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")

	require.NoError(t, os.WriteFile(input, []byte("pptx"), 0o644))

	runner := &office{}
	c := soffice.New(soffice.WithRunner(runner), soffice.WithOutputDir(filepath.Join(dir, "out")))

	output, err := c.Convert(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "deck.pdf"), output)
	assert.Equal(t, 1, runner.calls)

	_, err = c.Convert(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, runner.calls, "a fresh output is reused")

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(input, later, later))

	_, err = c.Convert(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 2, runner.calls, "a stale output is rebuilt")
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()

	c := soffice.New(soffice.WithRunner(&office{}), soffice.WithOutputDir(dir))

	_, err := c.Convert(context.Background(), filepath.Join(dir, "missing.pptx"))
	require.Error(t, err)

	input := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(input, []byte("pptx"), 0o644))

	c = soffice.New(soffice.WithRunner(&office{err: errors.New("soffice: exit status 1")}), soffice.WithOutputDir(dir))

	_, err = c.Convert(context.Background(), input)
	require.ErrorContains(t, err, "exit status 1")
}

func TestArgs(t *testing.T) {
	assert.Equal(t, []string{"--headless", "--convert-to", "pdf", "--outdir", "/tmp/out", "in.pptx"}, soffice.Args("in.pptx", "/tmp/out"))
}
