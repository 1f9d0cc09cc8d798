// Command elliotfit fits the Elliot absorption model to measured spectra.
//
// Usage:
//
//	elliotfit [flags] table-file
//
// The table holds one axis column (wavelength in nm, or energy in eV with
// -energy) followed by one absorption column per dataset.
//
// Examples:
//
//	elliotfit film.csv
//	elliotfit -fitmode 1 -baseline 1.8,2.1 -datasets 1,3 film.csv
//	elliotfit -config run.yaml -csv fits.csv -json fits.json film.txt
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-elliot/analysis"
	"github.com/cwbudde/algo-elliot/baseline"
	"github.com/cwbudde/algo-elliot/internal/dataio"
	"github.com/cwbudde/algo-elliot/spectrum"
)

func main() {
	deltaE := flag.Float64("deltaE", analysis.DefaultDeltaE, "normalisation offset above the n=1 exciton in eV")
	ns := flag.Int("ns", analysis.DefaultNS, "baseline point density (continuum nodes = 10*ns)")
	fitMode := flag.Int("fitmode", 0, "baseline mode: 0 none, 1 linear, 2 Rayleigh")
	datasets := flag.String("datasets", "", "comma separated 1-based dataset numbers (default all)")
	baselineRange := flag.String("baseline", "", "baseline energy range lo,hi in eV")
	fitRange := flag.String("fit", "", "fit energy range lo,hi in eV")
	noAuto := flag.Bool("no-auto", false, "disable the Eg±0.5 eV refinement stage")
	prelim := flag.Bool("prelim", false, "run a preliminary fit over the 10-90% energy interior")
	workers := flag.Int("workers", 1, "datasets analysed concurrently")
	maxIter := flag.Int("maxiter", 0, "solver iteration limit (0 keeps the default)")
	smooth := flag.Float64("smooth", 0, "Gaussian pre-smoothing for onset detection, in samples")
	energyAxis := flag.Bool("energy", false, "first column is photon energy in eV instead of wavelength in nm")
	configPath := flag.String("config", "", "YAML file with analysis settings; flags given explicitly override it")
	csvOut := flag.String("csv", "", "write curves and parameters as CSV to this file")
	jsonOut := flag.String("json", "", "write parameter records as JSON to this file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: elliotfit [flags] table-file\n\n")
		fmt.Fprintf(os.Stderr, "Fits the Elliot exciton/continuum model to absorption spectra.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  elliotfit film.csv\n")
		fmt.Fprintf(os.Stderr, "  elliotfit -fitmode 1 -baseline 1.8,2.1 -datasets 1,3 film.csv\n")
		fmt.Fprintf(os.Stderr, "  elliotfit -config run.yaml -csv fits.csv film.txt\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := analysis.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = dataio.LoadConfigFile(*configPath, cfg); err != nil {
			fail(err)
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["deltaE"] {
		cfg.DeltaE = *deltaE
	}
	if set["ns"] {
		cfg.NS = *ns
	}
	if set["fitmode"] {
		m, err := baseline.ParseMode(*fitMode)
		if err != nil {
			fail(err)
		}
		cfg.FitMode = m
	}
	if set["datasets"] {
		list, err := parseInts(*datasets)
		if err != nil {
			fail(fmt.Errorf("-datasets: %w", err))
		}
		cfg.Datasets = list
	}
	if set["baseline"] {
		r, err := parseRange(*baselineRange)
		if err != nil {
			fail(fmt.Errorf("-baseline: %w", err))
		}
		cfg.BaselineRange = r
	}
	if set["fit"] {
		r, err := parseRange(*fitRange)
		if err != nil {
			fail(fmt.Errorf("-fit: %w", err))
		}
		cfg.FitRange = r
	}
	if set["no-auto"] {
		cfg.AutoRange = !*noAuto
	}
	if set["prelim"] {
		cfg.Preliminary = *prelim
	}
	if set["workers"] {
		cfg.Workers = *workers
	}
	if set["maxiter"] && *maxIter > 0 {
		cfg.MaxIterations = *maxIter
	}
	if set["smooth"] {
		cfg.SmoothSigma = *smooth
	}

	unit := analysis.Wavelength
	if *energyAxis {
		unit = analysis.Energy
	}

	tab, err := dataio.ReadFile(flag.Arg(0), unit)
	if err != nil {
		fail(err)
	}

	report := analysis.Run(tab, cfg)
	printSummary(report)

	if *csvOut != "" {
		if err := writeFile(*csvOut, func(f *os.File) error { return dataio.WriteCSV(f, tab, report) }); err != nil {
			fail(err)
		}
	}
	if *jsonOut != "" {
		if err := writeFile(*jsonOut, func(f *os.File) error { return dataio.WriteJSON(f, report) }); err != nil {
			fail(err)
		}
	}

	if len(report.Succeeded()) == 0 {
		os.Exit(1)
	}
}

func fail(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	return f.Close()
}

func printSummary(report analysis.Report) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Dataset\tEg [eV]\tEb [meV]\tEb GS [meV]\tGamma [meV]\tucvsq\tmhcnp\tq\tDeff\tR²\tUrbach [meV]\tNotes\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "-------\t-------\t--------\t-----------\t-----------\t-----\t-----\t-\t----\t--\t------------\t-----\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, d := range report.Datasets {
		if d.Err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "dataset %d: %v\n", d.Dataset, d.Err)
			continue
		}

		r := d.Result
		p := r.Params

		urbach := "-"
		if r.Urbach != nil {
			urbach = fmt.Sprintf("%.2f", r.Urbach.Energy*1000)
		}

		var notes []string
		if !r.Converged {
			notes = append(notes, "not converged")
		}
		if len(r.Saturated) > 0 {
			notes = append(notes, "at bound: "+strings.Join(r.Saturated, ","))
		}
		if r.QWarning != "" {
			notes = append(notes, r.QWarning)
		}

		if _, err := fmt.Fprintf(tw, "%d\t%.4f\t%.2f\t%.2f\t%.2f\t%.4g\t%.4f\t%.4f\t%.3f\t%.5f\t%s\t%s\n",
			d.Dataset,
			p.Eg,
			p.Eb*1000,
			r.EbGroundState*1000,
			p.Gamma*1000,
			p.Ucvsq,
			p.Mhcnp,
			p.Q,
			r.Deff,
			r.RSquared,
			urbach,
			strings.Join(notes, "; "),
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseRange(s string) (spectrum.Range, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return spectrum.Range{}, fmt.Errorf("want lo,hi, got %q", s)
	}

	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return spectrum.Range{}, err
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return spectrum.Range{}, err
	}

	return spectrum.NewRange(lo, hi), nil
}
