package transcode

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDecoderConfig(t *testing.T) {
	cfg := DefaultDecoderConfig()
	assert.Equal(t, 16000, cfg.TargetSampleRate)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "ffprobe", cfg.FFprobePath)
	assert.False(t, cfg.NormalizePeak)
}

func TestNewDecoderNilConfig(t *testing.T) {
	d := NewDecoder(nil)
	require.NotNil(t, d.config)
	assert.Equal(t, 16000, d.config.TargetSampleRate)
}

func TestBytesToFloat64(t *testing.T) {
	values := []float64{0.0, 0.5, -1.0, 1.0}
	raw := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}

	pcm, err := bytesToFloat64(raw)
	require.NoError(t, err)
	assert.Equal(t, values, pcm)

	_, err = bytesToFloat64(raw[:5])
	require.Error(t, err)

	pcm, err = bytesToFloat64(nil)
	require.NoError(t, err)
	assert.Empty(t, pcm)
}

func TestNormalizePeak(t *testing.T) {
	pcm := []float64{0.1, -0.5, 0.25}
	normalizePeak(pcm)
	assert.InDelta(t, 0.2, pcm[0], 1e-12)
	assert.InDelta(t, -1.0, pcm[1], 1e-12)
	assert.InDelta(t, 0.5, pcm[2], 1e-12)

	// All-zero input stays untouched.
	zeros := []float64{0, 0, 0}
	normalizePeak(zeros)
	assert.Equal(t, []float64{0, 0, 0}, zeros)
}

func TestDecodeFileMissingBinary(t *testing.T) {
	cfg := DefaultDecoderConfig()
	cfg.FFmpegPath = "/nonexistent/ffmpeg"
	cfg.FFprobePath = "/nonexistent/ffprobe"
	d := NewDecoder(cfg)

	_, err := d.DecodeFile("missing.m4a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.m4a")

	_, _, _, err = d.Probe("missing.m4a")
	require.Error(t, err)
}
