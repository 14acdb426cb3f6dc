package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ErrNotInstalled is returned when ffmpeg cannot be found on PATH.
var ErrNotInstalled = errors.New("ffmpeg not found on PATH")

// Available reports whether ffmpeg is on PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// ToWAV decodes any format ffmpeg understands into a 16-bit PCM WAV held in
// memory. Output larger than maxBytes aborts the conversion; ctx bounds the
// run time so a stuck decode cannot hang the caller.
func ToWAV(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	if !Available() {
		return nil, fmt.Errorf("%w (required for %s)", ErrNotInstalled, path)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-f", "wav", "-acodec", "pcm_s16le",
		"-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start: %w", err)
	}

	out, readErr := io.ReadAll(io.LimitReader(stdout, maxBytes+1))
	if int64(len(out)) > maxBytes {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("ffmpeg convert: output exceeds %d bytes", maxBytes)
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg convert: %w\n%s", err, stderr.Bytes())
	}
	if readErr != nil {
		return nil, fmt.Errorf("ffmpeg read: %w", readErr)
	}
	return out, nil
}
