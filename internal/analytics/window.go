package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
)

// Window presets accepted by the ranking endpoints.
const (
	PresetAll         = "all"
	PresetLastWeek    = "last_week"
	PresetLastMonth   = "last_month"
	PresetLast3Months = "last_3_months"

	dateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

var presetDays = map[string]int{
	PresetLastWeek:    7,
	PresetLastMonth:   30,
	PresetLast3Months: 90,
}

// ResolvePreset converts a named preset into a window ending at now. The
// "all" preset and an empty name mean no window.
func ResolvePreset(name string, now time.Time) (*models.Window, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == PresetAll {
		return nil, nil
	}
	days, ok := presetDays[name]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown window preset %q", name))
	}
	end := now.Unix()
	return &models.Window{Start: end - int64(days)*secondsPerDay, End: end}, nil
}

// ParseWindow builds a custom window from raw bounds. Each bound is either
// Unix seconds or a YYYY-MM-DD date; dates cover the whole day in loc. Both
// bounds empty means no window.
func ParseWindow(rawStart, rawEnd string, loc *time.Location) (*models.Window, error) {
	rawStart, rawEnd = strings.TrimSpace(rawStart), strings.TrimSpace(rawEnd)
	if rawStart == "" && rawEnd == "" {
		return nil, nil
	}
	if rawStart == "" || rawEnd == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start and end must be provided together")
	}
	start, err := parseBound(rawStart, loc, false)
	if err != nil {
		return nil, err
	}
	end, err := parseBound(rawEnd, loc, true)
	if err != nil {
		return nil, err
	}
	w := &models.Window{Start: start, End: end}
	if err := ValidateWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

// ValidateWindow rejects windows whose end precedes their start.
func ValidateWindow(w *models.Window) error {
	if w == nil {
		return nil
	}
	if w.End < w.Start {
		return appErrors.Clone(appErrors.ErrInvalidWindow, fmt.Sprintf("window end %d precedes start %d", w.End, w.Start))
	}
	return nil
}

func parseBound(raw string, loc *time.Location, endOfDay bool) (int64, error) {
	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ts, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid window bound %q", raw))
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Unix() - 1, nil
	}
	return day.Unix(), nil
}
