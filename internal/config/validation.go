// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strings"

	"github.com/ManuGH/dayloop/internal/encoder"
	"github.com/ManuGH/dayloop/internal/schedule"
	"github.com/ManuGH/dayloop/internal/validate"
)

// OutputSchemes are the accepted encoder output URL schemes.
var OutputSchemes = []string{"rtsp", "rtsps", "rtmp", "rtmps", "srt", "udp", "tcp"}

// Validate checks the merged configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("log.level", cfg.Log.Level, validate.LogLevels)
	v.NotEmpty("log.service", cfg.Log.Service)

	v.NotEmpty("videos.base_path", cfg.Videos.BasePath)
	if len(cfg.Videos.Extensions) == 0 {
		v.AddError("videos.extensions", "at least one extension is required", cfg.Videos.Extensions)
	}
	for i, ext := range cfg.Videos.Extensions {
		v.NotEmpty(fmt.Sprintf("videos.extensions[%d]", i), strings.TrimPrefix(ext, "."))
	}

	validateSchedule(v, cfg.Schedule)
	validateEncoder(v, cfg.Encoder)

	v.PositiveDuration("playback.backoff", cfg.Playback.Backoff)
	v.PositiveDuration("playback.advance", cfg.Playback.Advance)

	if cfg.Ops.Listen != "" {
		v.ListenAddr("ops.listen", cfg.Ops.Listen)
	}

	return v.Err()
}

func validateSchedule(v *validate.Validator, s ScheduleConfig) {
	if len(s.Categories) == 0 {
		v.AddError("schedule.categories", "at least one category is required", nil)
		return
	}
	for i, c := range s.Categories {
		field := fmt.Sprintf("schedule.categories[%d]", i)
		v.NotEmpty(field+".name", c.Name)
		v.Range(field+".start", c.Start, 0, schedule.HoursPerDay-1)
		v.Range(field+".end", c.End, 1, schedule.HoursPerDay)
	}

	cats := Categories(s)
	if _, err := schedule.NewResolver(cats, s.Fallback); err != nil {
		v.AddError("schedule", err.Error(), nil)
		return
	}
	if err := schedule.Coverage(cats); err != nil {
		v.AddError("schedule.categories", err.Error(), nil)
	}
}

func validateEncoder(v *validate.Validator, e EncoderConfig) {
	v.NotEmpty("encoder.binary", e.Binary)
	if err := (encoder.Template{Binary: strings.TrimSpace(e.Binary), Args: e.Args}).Validate(); err != nil {
		v.AddError("encoder.args", err.Error(), e.Args)
	}
	for _, a := range e.Args {
		if strings.Contains(a, encoder.OutputPlaceholder) {
			v.AddError("encoder.args", "unresolved "+encoder.OutputPlaceholder+" placeholder", a)
			break
		}
	}
	v.URL("encoder.output_url", e.OutputURL, OutputSchemes)

	if len(e.Keywords) == 0 {
		v.AddError("encoder.keywords", "at least one keyword is required", e.Keywords)
	}
	for i, k := range e.Keywords {
		v.NotEmpty(fmt.Sprintf("encoder.keywords[%d]", i), k)
	}
	v.Positive("encoder.tail_lines", e.TailLines)
}
