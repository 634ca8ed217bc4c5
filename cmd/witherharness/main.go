// Command witherharness drives internal/harness against a hand-specified
// scenario: a true event location and a set of observer positions, each
// with its own view distance. It reconstructs the hints each observer would
// have reported, fuses them, and reports the recovered estimate's distance
// from the truth -- the same thing the scenario tests in
// internal/harness/scenario_test.go check automatically, but runnable
// ad hoc from the command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/hollowgrove/witherlocate/internal/diag"
	"github.com/hollowgrove/witherlocate/internal/harness"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

type fatal struct{ err interface{} }

func exit(err interface{}) {
	panic(fatal{err})
}

type commandLine struct {
	event        string
	observers    string
	estimator    string
	sigma        float64
	diagDir      string
	diagFileName string
}

func parseCommandLine() *commandLine {
	var cl commandLine
	flag.StringVar(&cl.event, "event", "", "true event as x,z")
	flag.StringVar(&cl.observers, "observers", "", "comma-separated observer specs, each id:px:pz:viewDistance")
	flag.StringVar(&cl.estimator, "estimator", "linear", "error estimator: exhaustive, optimizedCorner, linear, covariance")
	flag.Float64Var(&cl.sigma, "sigma", 1.0, "sigma for the covariance estimator")
	flag.StringVar(&cl.diagDir, "diag", "", "directory to write a diagnostic raster PNG (empty disables it)")
	flag.StringVar(&cl.diagFileName, "diag-name", "scenario.png", "filename for the diagnostic raster")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: witherharness -event <x,z> -observers <id:px:pz:viewDist,...> [options]

Options:
       -estimator  exhaustive|optimizedCorner|linear|covariance  (default linear)
       -sigma      <float>                                      (default 1.0)
       -diag       <directory>
       -diag-name  <filename>                                   (default scenario.png)
`)
	}
	flag.Parse()
	if cl.event == "" || cl.observers == "" {
		flag.Usage()
		os.Exit(1)
	}
	return &cl
}

func parsePoint(s string) (vec2.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return vec2.Point{}, fmt.Errorf("expected x,z, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return vec2.Point{}, err
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return vec2.Point{}, err
	}
	return vec2.Point{X: x, Z: z}, nil
}

func parseObserverSpecs(s string) ([]harness.ObserverSpec, error) {
	var specs []harness.ObserverSpec
	for _, field := range strings.Split(s, ",") {
		parts := strings.Split(field, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("observer spec %q must be id:px:pz:viewDist", field)
		}
		px, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		pz, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, err
		}
		vd, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return nil, err
		}
		specs = append(specs, harness.ObserverSpec{
			ID:           parts[0],
			Pos:          vec2.Point{X: px, Z: pz},
			ViewDistance: vd,
		})
	}
	return specs, nil
}

// harnessToEventEstimate adapts a harness.Result back into an
// obs.EventEstimate so the diag package -- which renders from the
// orchestrator's own result type -- can draw it without a second code path.
func harnessToEventEstimate(res harness.Result, observations []obs.Observation, estimatorName string) obs.EventEstimate {
	return obs.EventEstimate{
		X:              res.Estimate.X,
		Z:              res.Estimate.Z,
		ErrorRadius:    res.ErrorRadius,
		FeasibleRegion: res.FeasibleRegion,
		Contributing:   observations,
		Flags:          res.Flags,
		EstimatorName:  estimatorName,
	}
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			if f, ok := err.(fatal); ok {
				log.Fatal(f.err)
			}
			panic(err)
		}
	}()

	cl := parseCommandLine()

	trueEvent, err := parsePoint(cl.event)
	if err != nil {
		exit(err)
	}
	specs, err := parseObserverSpecs(cl.observers)
	if err != nil {
		exit(err)
	}

	observations := harness.BuildObservations(specs, trueEvent)
	res, err := harness.Run(observations, cl.estimator, cl.sigma, trueEvent)
	if err != nil {
		exit(err)
	}

	fmt.Printf("estimate:        (%.3f, %.3f)\n", res.Estimate.X, res.Estimate.Z)
	fmt.Printf("distanceToTrue:  %.3f\n", res.DistanceToTrue)
	fmt.Printf("errorRadius:     %.3f\n", res.ErrorRadius)
	fmt.Printf("illConditioned:  %v\n", res.IllConditioned)
	fmt.Printf("feasibleRegion:  %d vertices\n", len(res.FeasibleRegion))
	if len(res.Flags) > 0 {
		names := make([]string, len(res.Flags))
		for i, f := range res.Flags {
			names[i] = f.String()
		}
		fmt.Printf("flags:           %s\n", strings.Join(names, ", "))
	}

	if cl.diagDir != "" {
		wedges := make([]ray.Wedge, 0, len(observations))
		for _, o := range observations {
			if w, err := ray.ObservationToWedge(o); err == nil {
				wedges = append(wedges, w)
			}
		}
		frame := diag.DefaultFrame(res.Estimate, res.ErrorRadius)
		est := harnessToEventEstimate(res, observations, cl.estimator)
		if err := diag.WriteFile(cl.diagDir, cl.diagFileName, frame, est, wedges, &trueEvent); err != nil {
			exit(err)
		}
		fmt.Printf("diagnostic:      %s\n", cl.diagDir+"/"+cl.diagFileName)
	}
}
