package wav_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"mpvshadow/internal/services"
	"mpvshadow/internal/testsupport"
	"mpvshadow/internal/wav"
)

func encode(t *testing.T, rate, channels int, pcm []int16) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := wav.Encode(&buf, rate, channels, pcm); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func ramp(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16((float64(i)/float64(n)*2 - 1) * 0.5 * 32767)
	}
	return out
}

func TestDecodeMono48kTo24kHalvesFrameCount(t *testing.T) {
	for _, frames := range []int{4800, 4801} {
		audio, err := wav.Decode(encode(t, 48000, 1, ramp(frames)), 24000)
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if audio.SampleRate != 24000 {
			t.Fatalf("expected 24000 Hz, got %d", audio.SampleRate)
		}
		if len(audio.Samples) != frames/2 {
			t.Fatalf("frames=%d: expected %d samples, got %d", frames, frames/2, len(audio.Samples))
		}
	}
}

func TestDecodeWithoutTargetPassesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	testsupport.WriteWAV(t, path, 48000, 1, ramp(3200))

	audio, err := wav.ReadFile(path, 0)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if audio.SampleRate != 48000 || len(audio.Samples) != 3200 {
		t.Fatalf("unexpected passthrough: rate=%d samples=%d", audio.SampleRate, len(audio.Samples))
	}
}

func TestDecodeOtherRatePairKeepsSourceRate(t *testing.T) {
	audio, err := wav.Decode(encode(t, 44100, 1, ramp(441)), 24000)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if audio.SampleRate != 44100 || len(audio.Samples) != 441 {
		t.Fatalf("expected untouched 44100 Hz buffer, got rate=%d samples=%d", audio.SampleRate, len(audio.Samples))
	}
}

func TestDecodeStereoDownmixAndScale(t *testing.T) {
	pcm := []int16{16384, -16384, 32767, 32767, -32768, 0}
	audio, err := wav.Decode(encode(t, 16000, 2, pcm), 0)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	want := []float64{0, 32767.0 / 32768.0, -0.5}
	if len(audio.Samples) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(audio.Samples))
	}
	for i, w := range want {
		if math.Abs(float64(audio.Samples[i])-w) > 1e-6 {
			t.Fatalf("sample %d: got %v want %v", i, audio.Samples[i], w)
		}
	}
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	raw := encode(t, 48000, 1, ramp(10))
	// Splice a LIST chunk between fmt and data.
	list := append([]byte("LIST"), 4, 0, 0, 0, 'I', 'N', 'F', 'O')
	spliced := append(append(append([]byte{}, raw[:36]...), list...), raw[36:]...)
	binary.LittleEndian.PutUint32(spliced[4:8], uint32(len(spliced)-8))

	audio, err := wav.Decode(spliced, 0)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(audio.Samples) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(audio.Samples))
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	good := encode(t, 48000, 1, ramp(32))

	notRiff := append([]byte{}, good...)
	copy(notRiff[0:4], "RIFX")

	float := append([]byte{}, good...)
	binary.LittleEndian.PutUint16(float[20:22], 3)

	eightBit := append([]byte{}, good...)
	binary.LittleEndian.PutUint16(eightBit[34:36], 8)

	truncated := append([]byte{}, good[:len(good)-10]...)

	noData := append([]byte{}, good[:36]...)
	noData = append(noData, make([]byte, 8)...)

	tests := map[string][]byte{
		"short":       good[:20],
		"magic":       notRiff,
		"ieee float":  float,
		"8-bit":       eightBit,
		"truncated":   truncated,
		"missing fmt": append([]byte("RIFF\x00\x00\x00\x00WAVE"), good[36:]...),
		"no data":     noData,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := wav.Decode(data, 24000)
			if err == nil {
				t.Fatal("expected decode error")
			}
			if !errors.Is(err, services.ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
		})
	}
}
