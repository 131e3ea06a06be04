package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/SammyDuDu/kospa-engine/logging"
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64     `json:"-"` // Mono PCM in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	FFmpegPath       string        `json:"ffmpeg_path"`  // Path to ffmpeg binary
	FFprobePath      string        `json:"ffprobe_path"` // Path to ffprobe binary
	Timeout          time.Duration `json:"timeout"`      // Timeout for ffmpeg operations
	NormalizePeak    bool          `json:"normalize_peak"`
}

// DefaultDecoderConfig returns the configuration used for syllable
// recordings: mono 16 kHz, which is what the acoustic analyzers expect
// from mobile uploads.
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 16000,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		Timeout:          30 * time.Second,
		NormalizePeak:    false,
	}
}

// Decoder converts arbitrary uploaded audio (m4a, webm, wav, ...) into
// mono float64 PCM using FFmpeg.
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// probeResult mirrors the ffprobe JSON fields we consume.
type probeResult struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns the codec, sample rate and duration of the first audio
// stream in the file.
func (d *Decoder) Probe(filename string) (codec string, sampleRate int, duration float64, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		filename)

	output, err := cmd.Output()
	if err != nil {
		return "", 0, 0, fmt.Errorf("ffprobe failed for %s: %w", filename, err)
	}

	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return "", 0, 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		sr, _ := strconv.Atoi(stream.SampleRate)
		dur, _ := strconv.ParseFloat(probe.Format.Duration, 64)
		return stream.CodecName, sr, dur, nil
	}
	return "", 0, 0, fmt.Errorf("no audio stream in %s", filename)
}

// DecodeFile decodes an audio file to mono PCM at the target sample rate.
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"filename":  filename,
	})
	logger.Debug("Starting audio file decode")

	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-i", filename,
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
		"-f", "f64le",
		"-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.Error(err, "ffmpeg decode failed", logging.Fields{"stderr": stderr.String()})
		return nil, fmt.Errorf("ffmpeg decode of %s failed: %w", filename, err)
	}

	pcm, err := bytesToFloat64(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	if d.config.NormalizePeak {
		normalizePeak(pcm)
	}

	duration := time.Duration(float64(len(pcm)) / float64(d.config.TargetSampleRate) * float64(time.Second))
	logger.Debug("Decode complete", logging.Fields{
		"samples":  len(pcm),
		"duration": duration.Seconds(),
	})

	return &AudioData{
		PCM:        pcm,
		SampleRate: d.config.TargetSampleRate,
		Channels:   1,
		Duration:   duration,
	}, nil
}

func bytesToFloat64(raw []byte) ([]float64, error) {
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("raw PCM length %d is not a multiple of 8", len(raw))
	}
	pcm := make([]float64, len(raw)/8)
	for i := range pcm {
		bits := binary.LittleEndian.Uint64(raw[i*8:])
		pcm[i] = math.Float64frombits(bits)
	}
	return pcm, nil
}

func normalizePeak(pcm []float64) {
	peak := 0.0
	for _, v := range pcm {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak <= 0 {
		return
	}
	for i := range pcm {
		pcm[i] /= peak
	}
}
