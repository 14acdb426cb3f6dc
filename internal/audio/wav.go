package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// maxWAVSize is the maximum WAV file size we'll load (50 MB).
const maxWAVSize = 50 * 1024 * 1024

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// DecodeWAV parses an in-memory WAV file into a Buffer at its native sample
// rate and channel count. Supports integer PCM (8, 16, 24, 32-bit), IEEE
// float (32, 64-bit) and WAVE_FORMAT_EXTENSIBLE wrapping either of them.
func DecodeWAV(data []byte) (*Buffer, error) {
	if len(data) > maxWAVSize {
		return nil, fmt.Errorf("wav: file too large (%d bytes, max %d)", len(data), maxWAVSize)
	}
	if len(data) < 44 {
		return nil, fmt.Errorf("wav: file too short")
	}

	// RIFF header
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: not a WAV file")
	}

	fmtOff, fmtSize, err := findChunk(data, "fmt ")
	if err != nil {
		return nil, err
	}
	if fmtSize < 16 || fmtOff+16 > len(data) {
		return nil, fmt.Errorf("wav: fmt chunk too short")
	}

	format := binary.LittleEndian.Uint16(data[fmtOff : fmtOff+2])
	channels := binary.LittleEndian.Uint16(data[fmtOff+2 : fmtOff+4])
	sampleRate := binary.LittleEndian.Uint32(data[fmtOff+4 : fmtOff+8])
	bitsPerSample := binary.LittleEndian.Uint16(data[fmtOff+14 : fmtOff+16])

	if format == wavFormatExtensible {
		// The real format code is the first two bytes of the SubFormat GUID.
		if fmtSize < 40 || fmtOff+26 > len(data) {
			return nil, fmt.Errorf("wav: extensible fmt chunk too short")
		}
		format = binary.LittleEndian.Uint16(data[fmtOff+24 : fmtOff+26])
	}

	switch format {
	case wavFormatPCM:
		if bitsPerSample != 8 && bitsPerSample != 16 && bitsPerSample != 24 && bitsPerSample != 32 {
			return nil, fmt.Errorf("wav: unsupported bit depth %d", bitsPerSample)
		}
	case wavFormatFloat:
		if bitsPerSample != 32 && bitsPerSample != 64 {
			return nil, fmt.Errorf("wav: unsupported float bit depth %d", bitsPerSample)
		}
	default:
		return nil, fmt.Errorf("wav: unsupported format %d (only PCM and IEEE float supported)", format)
	}
	if channels < 1 || channels > 8 {
		return nil, fmt.Errorf("wav: unsupported channel count %d", channels)
	}
	if sampleRate == 0 {
		return nil, fmt.Errorf("wav: invalid sample rate 0")
	}

	dataOff, dataSize, err := findChunk(data, "data")
	if err != nil {
		return nil, err
	}
	if dataOff+dataSize > len(data) {
		dataSize = len(data) - dataOff
	}
	raw := data[dataOff : dataOff+dataSize]

	bytesPerSample := int(bitsPerSample) / 8
	frameSize := bytesPerSample * int(channels)
	if frameSize == 0 {
		return nil, fmt.Errorf("wav: invalid frame size")
	}
	numFrames := len(raw) / frameSize
	if numFrames == 0 {
		return nil, fmt.Errorf("wav: no audio data")
	}

	samples := make([]float64, numFrames*int(channels))
	for i := range samples {
		off := i * bytesPerSample
		if format == wavFormatFloat {
			samples[i] = decodeFloatSample(raw, off, bitsPerSample)
		} else {
			samples[i] = decodeSample(raw, off, bitsPerSample)
		}
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: int(sampleRate),
		Channels:   int(channels),
	}, nil
}

// findChunk locates a RIFF chunk by its 4-byte ID and returns (dataOffset, dataSize).
func findChunk(data []byte, id string) (int, int, error) {
	off := 12 // skip RIFF header
	for off+8 <= len(data) {
		chunkID := string(data[off : off+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		if chunkID == id {
			return off + 8, chunkSize, nil
		}
		if chunkSize < 0 || chunkSize > len(data) {
			break
		}
		// Advance to next chunk (chunks are word-aligned)
		off += 8 + chunkSize
		if off%2 != 0 {
			off++
		}
	}
	return 0, 0, fmt.Errorf("wav: %q chunk not found", id)
}

// decodeSample reads one integer sample at the given byte offset and returns it as float64 in [-1, 1].
func decodeSample(data []byte, off int, bitsPerSample uint16) float64 {
	switch bitsPerSample {
	case 8:
		// 8-bit WAV is unsigned (0-255, 128 = silence)
		return (float64(data[off]) - 128.0) / 128.0
	case 16:
		s := int16(data[off]) | int16(data[off+1])<<8
		return float64(s) / 32768.0
	case 24:
		val := int(data[off]) | int(data[off+1])<<8 | int(data[off+2])<<16
		if val >= 1<<23 {
			val -= 1 << 24
		}
		return float64(val) / 8388608.0
	case 32:
		s := int32(binary.LittleEndian.Uint32(data[off : off+4]))
		return float64(s) / 2147483648.0
	}
	return 0
}

func decodeFloatSample(data []byte, off int, bitsPerSample uint16) float64 {
	if bitsPerSample == 64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(data[off : off+8]))
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4])))
}
