// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package encoder

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// InputPlaceholder is the single substitution point of a Template.
	InputPlaceholder = "{input}"
	// OutputPlaceholder is replaced by the configured output URL when the
	// configuration is loaded; it never reaches a running Template.
	OutputPlaceholder = "{output}"

	DefaultBinary    = "ffmpeg"
	DefaultOutputURL = "rtsp://mediamtx:8554/stream"
)

var (
	ErrEmptyBinary      = errors.New("encoder binary is empty")
	ErrInputPlaceholder = errors.New("encoder args must contain exactly one " + InputPlaceholder + " argument")
)

// DefaultArgs is the RTSP restream argument list. It plays the input in real
// time and re-encodes to a low-latency H.264/AAC stream.
var DefaultArgs = []string{
	"-re", "-i", InputPlaceholder,

	// video
	"-c:v", "libx264",
	"-preset", "veryfast",
	"-tune", "zerolatency",
	"-x264-params", "repeat-headers=1",
	"-crf", "23",
	"-maxrate", "2000k",
	"-bufsize", "500k",

	// audio
	"-c:a", "aac",
	"-b:a", "128k",
	"-ar", "44100",
	"-ac", "2",

	// stream structure
	"-pix_fmt", "yuv420p",
	"-g", "25",
	"-keyint_min", "25",
	"-sc_threshold", "0",

	// muxer behaviour
	"-fflags", "+genpts+flush_packets+nobuffer",
	"-avoid_negative_ts", "make_zero",
	"-flush_packets", "1",
	"-max_muxing_queue_size", "1024",

	// output
	"-loglevel", "warning",
	"-f", "rtsp",
	"-rtsp_transport", "tcp",
	OutputPlaceholder,
}

// Template is the fixed encoder invocation with one input substitution point.
type Template struct {
	Binary string
	Args   []string
}

// NewTemplate validates and copies binary and args.
func NewTemplate(binary string, args []string) (Template, error) {
	t := Template{Binary: strings.TrimSpace(binary), Args: append([]string(nil), args...)}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// Validate checks the binary and the placeholder count.
func (t Template) Validate() error {
	if t.Binary == "" {
		return ErrEmptyBinary
	}
	n := 0
	for _, a := range t.Args {
		if a == InputPlaceholder {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("%w (found %d)", ErrInputPlaceholder, n)
	}
	return nil
}

// Build returns a fresh argument vector (without the binary) with input substituted.
func (t Template) Build(input string) []string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		if a == InputPlaceholder {
			a = input
		}
		args[i] = a
	}
	return args
}

// ExpandOutput replaces every OutputPlaceholder argument with url.
func ExpandOutput(args []string, url string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ReplaceAll(a, OutputPlaceholder, url)
	}
	return out
}
