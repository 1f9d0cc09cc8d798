package analysis

import (
	"golang.org/x/sync/errgroup"
)

// DatasetResult is one slot of a Report: a result or the error that stopped
// that dataset.
type DatasetResult struct {
	Dataset int
	Result  *Result
	Err     error
}

// Report holds one slot per selected dataset, in selection order.
type Report struct {
	Name     string
	Datasets []DatasetResult
}

// Succeeded returns the datasets that produced a result.
func (r Report) Succeeded() []Result {
	var out []Result
	for _, d := range r.Datasets {
		if d.Err == nil && d.Result != nil {
			out = append(out, *d.Result)
		}
	}

	return out
}

// Failed returns the slots that carry an error.
func (r Report) Failed() []DatasetResult {
	var out []DatasetResult
	for _, d := range r.Datasets {
		if d.Err != nil {
			out = append(out, d)
		}
	}

	return out
}

// Run analyses the selected datasets of t independently. Up to cfg.Workers
// datasets run concurrently; a failing dataset records its error in its own
// slot and never stops the others.
func Run(t Table, cfg Config) Report {
	selected := t.selection(cfg.Datasets)
	report := Report{Name: t.Name, Datasets: make([]DatasetResult, len(selected))}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, n := range selected {
		slot := &report.Datasets[i]
		slot.Dataset = n

		g.Go(func() error {
			raw, err := t.Dataset(n)
			if err != nil {
				slot.Err = err
				return nil
			}

			res, err := Analyze(raw, cfg)
			if err != nil {
				slot.Err = err
				return nil
			}

			res.Dataset = n
			slot.Result = &res

			return nil
		})
	}

	_ = g.Wait()

	return report
}
