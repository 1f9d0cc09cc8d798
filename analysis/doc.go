// Package analysis runs the complete Elliot fitting pipeline over the
// datasets of a measurement table.
//
// For each dataset [Analyze] subtracts the configured baseline, detects the
// absorption onset, resolves the starting band gap against the user's guess,
// derives the ±0.4 eV Eg box, runs the staged fit and computes the derived
// metrics. [Run] repeats that for every selected dataset on a bounded worker
// pool; a failure is stored in the dataset's own slot of the [Report].
//
// # Usage
//
//	cfg := analysis.DefaultConfig()
//	cfg.FitMode = baseline.Linear
//	cfg.BaselineRange = spectrum.NewRange(1.6, 1.9)
//	report := analysis.Run(table, cfg)
//	for _, d := range report.Datasets {
//		if d.Err != nil {
//			continue
//		}
//		fmt.Println(d.Result.Record())
//	}
package analysis
