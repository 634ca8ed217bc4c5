package obs

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// ReplayLineWidth is the fixed width of one ReplaySource record: a
// fixed-column format in the spirit of MPC 80-column observation records,
// adapted to this domain's fields instead of RA/Dec sexagesimal angles.
//
// Columns (0-indexed, space-separated, left-padded where numeric):
//
//	 0-15  observer ID        (16 chars)
//	17-26  observer X         (10 chars, signed int)
//	28-37  observer Z         (10 chars, signed int)
//	39-46  observer Y         ( 8 chars, signed float)
//	48-55  hint RX            ( 8 chars, signed int)
//	57-64  hint RZ            ( 8 chars, signed int)
//	66-71  hint Y             ( 6 chars, signed int)
//	73-84  observed-at        (12 chars, unix seconds)
const ReplayLineWidth = 85

const (
	colObserverID = 0
	widObserverID = 16
	colObserverX  = colObserverID + widObserverID + 1
	widObserverX  = 10
	colObserverZ  = colObserverX + widObserverX + 1
	widObserverZ  = 10
	colObserverY  = colObserverZ + widObserverZ + 1
	widObserverY  = 8
	colHintRX     = colObserverY + widObserverY + 1
	widHintRX     = 8
	colHintRZ     = colHintRX + widHintRX + 1
	widHintRZ     = 8
	colHintY      = colHintRZ + widHintRZ + 1
	widHintY      = 6
	colObservedAt = colHintY + widHintY + 1
	widObservedAt = 12
)

// FormatReplayLine renders o as one fixed-width ReplaySource record. The
// inverse of ParseReplayLine.
func FormatReplayLine(o Observation) string {
	var b strings.Builder
	writeField(&b, o.ObserverID, widObserverID)
	b.WriteByte(' ')
	writeField(&b, strconv.FormatInt(int64(o.ObserverPos.X), 10), widObserverX)
	b.WriteByte(' ')
	writeField(&b, strconv.FormatInt(int64(o.ObserverPos.Z), 10), widObserverZ)
	b.WriteByte(' ')
	writeField(&b, strconv.FormatFloat(o.ObserverY, 'f', 1, 64), widObserverY)
	b.WriteByte(' ')
	writeField(&b, strconv.FormatInt(int64(o.Hint.RX), 10), widHintRX)
	b.WriteByte(' ')
	writeField(&b, strconv.FormatInt(int64(o.Hint.RZ), 10), widHintRZ)
	b.WriteByte(' ')
	writeField(&b, strconv.FormatInt(int64(o.HintY), 10), widHintY)
	b.WriteByte(' ')
	writeField(&b, strconv.FormatInt(o.ObservedAt.Unix(), 10), widObservedAt)
	return b.String()
}

func writeField(b *strings.Builder, v string, width int) {
	if len(v) > width {
		v = v[:width]
	}
	for i := len(v); i < width; i++ {
		b.WriteByte(' ')
	}
	b.WriteString(v)
}

// ParseReplayLine parses one fixed-width ReplaySource record produced by
// FormatReplayLine. Lines of any other length are rejected, mirroring
// ParseObs80's own "must be 80 characters" check.
func ParseReplayLine(line string) (Observation, error) {
	var o Observation
	if len(line) != ReplayLineWidth {
		return o, errors.Errorf("obs: replay line must be %d characters, got %d", ReplayLineWidth, len(line))
	}

	o.ObserverID = strings.TrimSpace(line[colObserverID : colObserverID+widObserverID])
	if o.ObserverID == "" {
		return o, errors.New("obs: replay line missing observer ID")
	}

	px, err := parseIntField(line, colObserverX, widObserverX, "observer X")
	if err != nil {
		return o, err
	}
	pz, err := parseIntField(line, colObserverZ, widObserverZ, "observer Z")
	if err != nil {
		return o, err
	}
	o.ObserverPos = vec2.Point{X: float64(px), Z: float64(pz)}

	o.ObserverY, err = parseFloatField(line, colObserverY, widObserverY, "observer Y")
	if err != nil {
		return o, err
	}

	rx, err := parseIntField(line, colHintRX, widHintRX, "hint RX")
	if err != nil {
		return o, err
	}
	rz, err := parseIntField(line, colHintRZ, widHintRZ, "hint RZ")
	if err != nil {
		return o, err
	}
	o.Hint = HintXZ{RX: int32(rx), RZ: int32(rz)}

	hy, err := parseIntField(line, colHintY, widHintY, "hint Y")
	if err != nil {
		return o, err
	}
	o.HintY = int32(hy)

	ts, err := parseIntField(line, colObservedAt, widObservedAt, "observed-at")
	if err != nil {
		return o, err
	}
	o.ObservedAt = time.Unix(ts, 0).UTC()

	return o, nil
}

func parseIntField(line string, col, width int, name string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(line[col:col+width]), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "obs: invalid %s", name)
	}
	return v, nil
}

func parseFloatField(line string, col, width int, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(line[col:col+width]), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "obs: invalid %s", name)
	}
	return v, nil
}

// ReplaySource reads Observations from a fixed-width line format, for tests
// and offline backfill replays. It reads the whole input eagerly at
// construction, then serves it over the channel at a configurable pace --
// an in-memory stand-in for a live obs.Source.
type ReplaySource struct {
	observations []Observation
	pace         time.Duration
	ch           chan Observation
	done         chan struct{}
}

// NewReplaySource parses every line of r as a ReplaySource record. Parse
// errors on individual lines are collected and returned jointly; a source
// is still returned for any lines that did parse, matching SplitTracklets'
// policy of dropping bad records rather than aborting the whole stream.
func NewReplaySource(r io.Reader, pace time.Duration) (*ReplaySource, error) {
	sc := bufio.NewScanner(r)
	var observations []Observation
	var lineErrs []string
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		o, err := ParseReplayLine(line)
		if err != nil {
			lineErrs = append(lineErrs, err.Error())
			continue
		}
		observations = append(observations, o)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "obs: reading replay source")
	}

	rs := &ReplaySource{
		observations: observations,
		pace:         pace,
		ch:           make(chan Observation),
		done:         make(chan struct{}),
	}
	go rs.run()

	if len(lineErrs) > 0 {
		return rs, errors.Errorf("obs: %d replay line(s) rejected: %s", len(lineErrs), strings.Join(lineErrs, "; "))
	}
	return rs, nil
}

func (rs *ReplaySource) run() {
	defer close(rs.ch)
	t := time.NewTicker(maxDuration(rs.pace, time.Millisecond))
	defer t.Stop()
	for _, o := range rs.observations {
		select {
		case <-rs.done:
			return
		case <-t.C:
		}
		select {
		case rs.ch <- o:
		case <-rs.done:
			return
		}
	}
}

func (rs *ReplaySource) Observations() <-chan Observation { return rs.ch }

func (rs *ReplaySource) Close() error {
	select {
	case <-rs.done:
	default:
		close(rs.done)
	}
	return nil
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
