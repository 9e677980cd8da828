package xslog

import (
	"fmt"
	"strings"
	"time"

	"github.com/x-thooh/geotech/pkg/log"
)

// Rollover computes when a timed rotating file is next rotated.
type Rollover struct {
	When     string
	Interval int
	UTC      bool

	period  time.Duration
	weekday int
}

// NewRollover parses a when code (S, M, H, D, MIDNIGHT, W0..W6). An empty
// code means H; a non-positive interval means 1.
func NewRollover(when string, interval int, utc bool) (*Rollover, error) {
	w := strings.ToUpper(when)
	if w == "" {
		w = "H"
	}
	if interval <= 0 {
		interval = 1
	}
	r := &Rollover{When: w, Interval: interval, UTC: utc}
	switch w {
	case "S":
		r.period = time.Second
	case "M":
		r.period = time.Minute
	case "H":
		r.period = time.Hour
	case "D":
		r.period = 24 * time.Hour
	case "MIDNIGHT":
	default:
		if !log.ValidWhen(w) {
			return nil, fmt.Errorf("%w: when %q", log.ErrInvalidRotation, when)
		}
		r.weekday = int(w[1] - '0')
	}
	return r, nil
}

// Weekly reports whether the rule rotates on a weekday.
func (r *Rollover) Weekly() bool {
	return r.When[0] == 'W'
}

// Next returns the first rollover instant strictly after t.
//
// Weekly rules rotate at the midnight that closes weekday d (0 is Monday),
// so W0 fires at 00:00 on Tuesday. Interval does not apply to them.
func (r *Rollover) Next(t time.Time) time.Time {
	if r.UTC {
		t = t.UTC()
	}
	if r.period > 0 {
		return t.Add(time.Duration(r.Interval) * r.period)
	}
	y, m, d := t.Date()
	if !r.Weekly() {
		return time.Date(y, m, d+r.Interval, 0, 0, 0, 0, t.Location())
	}
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
	target := time.Weekday((r.weekday + 2) % 7)
	days := (int(target) - int(midnight.Weekday()) + 7) % 7
	return midnight.AddDate(0, 0, days)
}
