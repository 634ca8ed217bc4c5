// Package config parses the key=value configuration file used to tune a
// running witherlocate instance: a small hand-rolled line scanner, no
// third-party config library.
package config

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Config holds every tunable option a running instance needs, plus the
// per-observer angular-error override this expansion adds (an optional
// keyed override of the global obserr, the same shape as a per-site
// sensitivity tweak).
type Config struct {
	ActiveObservers     int
	BatchWindow         time.Duration
	Estimator           string
	Sigma               float64
	ViewDistanceBlocks  int
	LogConnectionString string
	ChatWebhookURL      string
	ChatChannelID       string
	ServerLabel         string

	// ObsErrDefault/ObsErrByObserver: an optional per-observer override of
	// angular uncertainty, falling back to a global default.
	ObsErrDefault    float64
	ObsErrByObserver map[string]float64

	// Repeatable records the `repeatable` key. No estimator reads it:
	// Strategy.Estimate always breaks corner-order ties with the seeded LCG
	// (errest.NewLCGRand), whatever this field says.
	Repeatable bool

	DiagDir string // empty disables the diagnostic raster artifact
}

// Default returns a Config with sensible defaults: batchWindowMillis 5000,
// viewDistanceBlocks left at 0 (callers must set it to match the game
// server), estimator "linear".
func Default() Config {
	return Config{
		ActiveObservers:  2,
		BatchWindow:      5 * time.Second,
		Estimator:        "linear",
		Sigma:            1.0,
		ObsErrByObserver: map[string]float64{},
	}
}

var kvLine = regexp.MustCompile(`^[ \t]*(.*?)[ \t]*=[ \t]*(.+)$`)

// Parse reads a key=value configuration stream into cfg, starting from
// Default() and overriding only the keys present. Blank lines and lines
// starting with '#' are ignored.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := kvLine.FindStringSubmatch(line)
		if m == nil {
			return cfg, errors.Errorf("config: invalid line %q", line)
		}
		key, val := m[1], m[2]
		if err := apply(&cfg, key, val); err != nil {
			return cfg, errors.Wrapf(err, "config: line %q", line)
		}
	}
	if err := sc.Err(); err != nil {
		return cfg, errors.Wrap(err, "config: reading")
	}
	return cfg, nil
}

func apply(cfg *Config, key, val string) error {
	switch {
	case key == "activeObservers":
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.ActiveObservers = n
	case key == "batchWindowMillis":
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.BatchWindow = time.Duration(n) * time.Millisecond
	case key == "estimator":
		cfg.Estimator = val
	case key == "sigma":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		cfg.Sigma = f
	case key == "viewDistanceBlocks":
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.ViewDistanceBlocks = n
	case key == "logConnectionString":
		cfg.LogConnectionString = val
	case key == "chatWebhookUrl":
		cfg.ChatWebhookURL = val
	case key == "chatChannelId":
		cfg.ChatChannelID = val
	case key == "serverLabel":
		cfg.ServerLabel = val
	case key == "obserr":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		cfg.ObsErrDefault = f
	case key == "diagDir":
		cfg.DiagDir = val
	case key == "repeatable":
		cfg.Repeatable = val == "true"
	case strings.HasPrefix(key, "obserr."):
		observerID := strings.TrimPrefix(key, "obserr.")
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		cfg.ObsErrByObserver[observerID] = f
	default:
		return errors.Errorf("unrecognized key %q", key)
	}
	return nil
}

// ObsErr returns the configured angular uncertainty for observerID, falling
// back to ObsErrDefault.
func (c Config) ObsErr(observerID string) float64 {
	if v, ok := c.ObsErrByObserver[observerID]; ok {
		return v
	}
	return c.ObsErrDefault
}
