// Package wav decodes 16-bit PCM WAV files into mono float samples for pitch
// analysis, and writes the same format for fixtures.
package wav

import (
	"encoding/binary"
	"fmt"
	"os"

	"mpvshadow/internal/services"
)

const (
	headerSize   = 44
	formatPCM    = 1
	decimateFrom = 48000
	decimateTo   = 24000
)

// Info describes the source format of a decoded file.
type Info struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// Audio is a decoded mono buffer with its effective sample rate.
type Audio struct {
	Samples    []float32
	SampleRate int
	Source     Info
}

// Duration returns the length of the buffer in seconds.
func (a Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// ReadFile decodes the WAV file at path. See Decode for targetRate semantics.
func ReadFile(path string, targetRate int) (Audio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Audio{}, services.Wrap(services.ErrDecode, "wav", "read", path, err)
	}
	return Decode(data, targetRate)
}

// Decode parses a RIFF/WAVE buffer, downmixes to mono, and scales samples to
// [-1, 1). When the source is 48 kHz and targetRate is 24000 the output is
// decimated 2:1 by pairwise averaging; every other combination returns samples
// at the source rate. A targetRate of 0 means no conversion.
func Decode(data []byte, targetRate int) (Audio, error) {
	info, payload, err := parseHeader(data)
	if err != nil {
		return Audio{}, err
	}
	if info.BitsPerSample != 16 {
		return Audio{}, decodeErr(fmt.Sprintf("unsupported bits_per_sample %d", info.BitsPerSample))
	}

	channels := max(info.Channels, 1)
	totalSamples := len(payload) / 2
	if totalSamples == 0 {
		rate := info.SampleRate
		if targetRate > 0 {
			rate = targetRate
		}
		return Audio{SampleRate: rate, Source: info}, nil
	}

	frames := totalSamples / channels
	mono := make([]float32, frames)
	offset := 0
	for i := range frames {
		var acc float32
		for range channels {
			sample := int16(binary.LittleEndian.Uint16(payload[offset:]))
			acc += float32(sample) / 32768.0
			offset += 2
		}
		mono[i] = acc / float32(channels)
	}

	if info.SampleRate == decimateFrom && targetRate == decimateTo {
		return Audio{Samples: decimate2(mono), SampleRate: decimateTo, Source: info}, nil
	}
	return Audio{Samples: mono, SampleRate: info.SampleRate, Source: info}, nil
}

// decimate2 halves the rate with a 2-tap box filter; a trailing odd sample is dropped.
func decimate2(in []float32) []float32 {
	out := make([]float32, 0, len(in)/2)
	for j := 0; j+1 < len(in); j += 2 {
		out = append(out, 0.5*(in[j]+in[j+1]))
	}
	return out
}

func parseHeader(buf []byte) (Info, []byte, error) {
	if len(buf) < headerSize {
		return Info{}, nil, decodeErr("file too small")
	}
	if string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WAVE" {
		return Info{}, nil, decodeErr("not RIFF/WAVE")
	}

	var (
		info     Info
		haveFmt  bool
		payload  []byte
		haveData bool
	)
	for p := 12; p+8 <= len(buf); {
		id := string(buf[p : p+4])
		size := int(binary.LittleEndian.Uint32(buf[p+4 : p+8]))
		body := p + 8
		if size < 0 || body+size > len(buf) {
			return Info{}, nil, decodeErr(fmt.Sprintf("chunk %q exceeds file bounds", id))
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return Info{}, nil, decodeErr("fmt chunk too small")
			}
			chunk := buf[body : body+size]
			if format := binary.LittleEndian.Uint16(chunk[0:2]); format != formatPCM {
				return Info{}, nil, decodeErr(fmt.Sprintf("unsupported format %d (PCM only)", format))
			}
			info = Info{
				Channels:      int(binary.LittleEndian.Uint16(chunk[2:4])),
				SampleRate:    int(binary.LittleEndian.Uint32(chunk[4:8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(chunk[14:16])),
			}
			haveFmt = true
		case "data":
			payload = buf[body : body+size]
			haveData = true
		}
		p = body + size
	}

	if !haveFmt {
		return Info{}, nil, decodeErr("missing fmt chunk")
	}
	if !haveData {
		return Info{}, nil, decodeErr("missing data chunk")
	}
	return info, payload, nil
}

func decodeErr(message string) error {
	return services.Wrap(services.ErrDecode, "wav", "", message, nil)
}
