// Package parser reads pointer samples from touch controller debug output, e.g.
//
//	[00:00:01.120,444] <dbg> touch: report: t: 120, id: 0, action: down, x: 35.5, y: 40
//
// Lines without all five fields are not samples and are skipped.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dasdy/softkeys/model"
)

// Sample is one pointer report. Offset is the controller's timestamp relative to the
// start of the trace.
type Sample struct {
	Offset time.Duration
	ID     int
	Action model.PointerAction
	X      float64
	Y      float64
}

// Event places the sample on a timeline starting at base.
func (s Sample) Event(base time.Time) model.PointerEvent {
	return model.PointerEvent{
		ID:     s.ID,
		Action: s.Action,
		X:      s.X,
		Y:      s.Y,
		Time:   base.Add(s.Offset),
	}
}

// String formats the sample the way ParseLine reads it.
func (s Sample) String() string {
	return fmt.Sprintf("t: %d, id: %d, action: %s, x: %s, y: %s",
		s.Offset.Milliseconds(), s.ID, s.Action,
		strconv.FormatFloat(s.X, 'f', -1, 64), strconv.FormatFloat(s.Y, 'f', -1, 64))
}

// ParseLine returns nil without an error for lines that are not samples.
func ParseLine(line string) (*Sample, error) {
	splits := strings.Fields(line)

	var (
		s          Sample
		foundCount int
		err        error
	)

	ix := 0
	limit := len(splits) - 1 // every field label is followed by its value

	for ix < limit {
		curItem := splits[ix]
		nextItem := strings.TrimSuffix(strings.TrimRight(splits[ix+1], ","), "\x1b[0m")

		switch curItem {
		case "t:":
			var ms int64

			ms, err = strconv.ParseInt(nextItem, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("could not parse time: %w", err)
			}

			s.Offset = time.Duration(ms) * time.Millisecond
			ix++
			foundCount++
		case "id:":
			s.ID, err = strconv.Atoi(nextItem)
			if err != nil {
				return nil, fmt.Errorf("could not parse pointer id: %w", err)
			}

			ix++
			foundCount++
		case "action:":
			s.Action, err = model.ParsePointerAction(nextItem)
			if err != nil {
				return nil, err
			}

			ix++
			foundCount++
		case "x:":
			s.X, err = strconv.ParseFloat(nextItem, 64)
			if err != nil {
				return nil, fmt.Errorf("could not parse x: %w", err)
			}

			ix++
			foundCount++
		case "y:":
			s.Y, err = strconv.ParseFloat(nextItem, 64)
			if err != nil {
				return nil, fmt.Errorf("could not parse y: %w", err)
			}

			ix++
			foundCount++
		default:
		}

		ix++
	}

	if foundCount == 5 {
		return &s, nil
	}

	return nil, nil
}
