package audio

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
)

// streamChunk is the number of frames pulled from a beep streamer per call.
const streamChunk = 4096

type streamDecoder func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

var streamDecoders = map[string]streamDecoder{
	".mp3": mp3.Decode,
	".flac": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(rc)
	},
	".ogg": vorbis.Decode,
	".oga": vorbis.Decode,
}

// externalFormats are decoded by piping through ffmpeg when it is installed.
var externalFormats = map[string]bool{
	".m4a":  true,
	".aac":  true,
	".opus": true,
	".wma":  true,
	".aif":  true,
	".aiff": true,
}

// IsAudioFile reports whether name has a suffix the Loader knows how to
// decode. Button actions use this to tell sound files from commands.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".wav" || ext == ".wave" {
		return true
	}
	if _, ok := streamDecoders[ext]; ok {
		return true
	}
	return externalFormats[ext]
}

// decodeBytes picks a decoder by file extension. maxDuration bounds the
// clip length; zero disables the check.
func decodeBytes(ext string, data []byte, maxDuration time.Duration) (*Buffer, error) {
	switch ext {
	case ".wav", ".wave":
		buf, err := DecodeWAV(data)
		if err != nil {
			return nil, err
		}
		if maxDuration > 0 && buf.Duration() > maxDuration {
			return nil, fmt.Errorf("wav: clip longer than %s", maxDuration)
		}
		return buf, nil
	}
	dec, ok := streamDecoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}
	return decodeStream(dec, io.NopCloser(bytes.NewReader(data)), maxDuration)
}

// decodeStream drains a beep streamer into an interleaved Buffer.
func decodeStream(dec streamDecoder, rc io.ReadCloser, maxDuration time.Duration) (*Buffer, error) {
	s, format, err := dec(rc)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	channels := format.NumChannels
	if channels != 1 {
		channels = 2
	}
	rate := int(format.SampleRate)
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}

	maxFrames := 0
	if maxDuration > 0 {
		maxFrames = int(maxDuration.Seconds() * float64(rate))
	}

	chunk := make([][2]float64, streamChunk)
	var samples []float64
	frames := 0
	for {
		n, ok := s.Stream(chunk)
		for i := 0; i < n; i++ {
			samples = append(samples, chunk[i][0])
			if channels == 2 {
				samples = append(samples, chunk[i][1])
			}
		}
		frames += n
		if maxFrames > 0 && frames > maxFrames {
			return nil, fmt.Errorf("clip longer than %s", maxDuration)
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if frames == 0 {
		return nil, fmt.Errorf("no audio data")
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: rate,
		Channels:   channels,
	}, nil
}
