package media

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// CommandRunner runs a command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// LocateFFmpeg resolves the ffmpeg binary.
//
// The lookup order is:
//  1. configured, when set (a bare name is resolved on PATH)
//  2. "ffmpeg" on PATH
//  3. common installation directories for the current OS
func LocateFFmpeg(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		path, err := exec.LookPath(configured)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrFFmpegNotFound, configured, err)
		}
		return path, nil
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	var common []string
	switch runtime.GOOS {
	case "darwin":
		common = []string{"/opt/homebrew/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/opt/local/bin/ffmpeg"}
	case "linux":
		common = []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/snap/bin/ffmpeg"}
	case "windows":
		common = []string{`C:\ffmpeg\bin\ffmpeg.exe`, `C:\Program Files\ffmpeg\bin\ffmpeg.exe`}
	}
	for _, path := range common {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrFFmpegNotFound
}

// Probe asks ffmpeg which encoders and muxers it was built with.
//
// A nil run uses ExecRunner.
func Probe(ctx context.Context, ffmpegPath string, run CommandRunner) (Capabilities, error) {
	if run == nil {
		run = ExecRunner
	}

	caps := Capabilities{FFmpegPath: ffmpegPath}
	if runtime.GOOS == "windows" {
		// The recorder hands audio to ffmpeg as an inherited pipe:3.
		return caps, fmt.Errorf("%w: no inherited audio pipe on windows", ErrUnsupported)
	}

	if out, err := run(ctx, ffmpegPath, "-hide_banner", "-version"); err == nil {
		caps.Version = parseVersion(out)
	}

	out, err := run(ctx, ffmpegPath, "-hide_banner", "-encoders")
	if err != nil {
		return caps, fmt.Errorf("list encoders: %w", err)
	}
	caps.Encoders = ParseEncoders(out)

	out, err = run(ctx, ffmpegPath, "-hide_banner", "-muxers")
	if err != nil {
		return caps, fmt.Errorf("list muxers: %w", err)
	}
	caps.Muxers = ParseMuxers(out)
	return caps, nil
}

// ParseEncoders reads the table printed by "ffmpeg -encoders".
//
// Rows follow a "------" separator and look like:
//
//	V....D libvpx-vp9           libvpx VP9 (codec vp9)
func ParseEncoders(out []byte) map[string]bool {
	return parseTable(out, func(flags string) bool { return len(flags) == 6 })
}

// ParseMuxers reads the table printed by "ffmpeg -muxers".
//
// Rows follow a "--" separator and look like:
//
//	E webm            WebM
func ParseMuxers(out []byte) map[string]bool {
	return parseTable(out, func(flags string) bool { return strings.Contains(flags, "E") })
}

func parseTable(out []byte, accept func(flags string) bool) map[string]bool {
	result := make(map[string]bool)
	inTable := false
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !inTable {
			if strings.HasPrefix(line, "--") {
				inTable = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !accept(fields[0]) {
			continue
		}
		for _, name := range strings.Split(fields[1], ",") {
			result[name] = true
		}
	}
	return result
}

func parseVersion(out []byte) string {
	line, _, _ := strings.Cut(string(out), "\n")
	fields := strings.Fields(line)
	if len(fields) >= 3 && fields[0] == "ffmpeg" && fields[1] == "version" {
		return fields[2]
	}
	return ""
}
