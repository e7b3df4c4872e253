package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geotides/internal/adapter/store/oceantide"
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/logging"
)

const sampleCSV = `constituent,doodson,degree,order,cnm_cos,snm_cos,cnm_sin,snm_sin
M2,255.555,2,2,3.1e-10,-1.2e-10,0.8e-10,2.0e-10
K1,165.555,2,1,-4.0e-11,1.5e-11,2.5e-11,0
`

func TestConvert_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "model.csv")
	ncPath := filepath.Join(dir, "model.nc")
	backPath := filepath.Join(dir, "back.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o600))

	ctx := context.Background()
	require.NoError(t, convert(ctx, csvPath, ncPath, domain.DefaultGM, domain.DefaultR, logging.Noop()))
	model, err := oceantide.ReadNetCDF(ncPath)
	require.NoError(t, err)
	require.Len(t, model.Constituents, 2)
	assert.Equal(t, 3.1e-10, model.Constituents[0].Cos.C[2][2])

	require.NoError(t, convert(ctx, ncPath, backPath, 0, 0, logging.Noop()))
	back, err := os.ReadFile(backPath)
	require.NoError(t, err)
	assert.Contains(t, string(back), "K1,165.555,2,1")
}

func TestConvert_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "model.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o600))

	err := convert(context.Background(), csvPath, filepath.Join(dir, "model.json"), domain.DefaultGM, domain.DefaultR, logging.Noop())
	assert.ErrorContains(t, err, "unsupported output format")
	err = convert(context.Background(), filepath.Join(dir, "model.txt"), csvPath, domain.DefaultGM, domain.DefaultR, logging.Noop())
	assert.ErrorContains(t, err, "unsupported input format")
}
