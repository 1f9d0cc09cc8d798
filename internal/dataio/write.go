package dataio

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/cwbudde/algo-elliot/analysis"
)

var paramHeader = []string{
	"Eg (eV)", "Eb_Rydberg (meV)", "Eb_GroundState (meV)", "Gamma (meV)",
	"ucvsq", "mhcnp", "q", "Deff", "R²", "Urbach Energy (meV)", "Urbach Slope", "Urbach Intercept",
}

// WriteCSV writes one block per successful dataset: a title row, the
// parameter header and values, then the curves sampled on the table axis
// (raw, baseline, exciton, band, exciton+band+baseline). Failed datasets get
// a title row and their error.
func WriteCSV(w io.Writer, t analysis.Table, report analysis.Report) error {
	cw := csv.NewWriter(w)

	axisName := "Wavelength (nm)"
	if t.Unit == analysis.Energy {
		axisName = "Energy (eV)"
	}

	for k, d := range report.Datasets {
		if k > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}

		if err := cw.Write([]string{"Dataset " + strconv.Itoa(d.Dataset)}); err != nil {
			return err
		}

		if d.Err != nil {
			if err := cw.Write([]string{"error", d.Err.Error()}); err != nil {
				return err
			}

			continue
		}

		r := d.Result
		rec := r.Record()

		urbach := []string{"", "", ""}
		if rec.UrbachEnergy != nil {
			urbach = []string{ff(*rec.UrbachEnergy * 1000), ff(*rec.UrbachSlope), ff(*rec.UrbachIntercept)}
		}

		rows := [][]string{
			paramHeader,
			append([]string{
				ff(rec.Eg), ff(rec.EbRydberg * 1000), ff(rec.EbGroundState * 1000), ff(rec.Gamma * 1000),
				ff(rec.Ucvsq), ff(rec.Mhcnp), ff(rec.Q), ff(rec.Deff), ff(rec.RSquared),
			}, urbach...),
			{},
			{axisName, "Raw Data", "Baseline", "Fitted Exciton", "Fitted Band", "Fitted Result (Band+Exciton+Baseline)"},
		}

		c := r.Curves
		for i := range c.Energy {
			axis := c.Energy[i]
			if i < len(t.Axis) {
				axis = t.Axis[i]
			}

			rows = append(rows, []string{
				ff(axis), ff(c.Raw[i]), ff(c.Baseline[i]), ff(c.Exciton[i]), ff(c.Band[i]), ff(c.Total[i]),
			})
		}

		if err := cw.WriteAll(rows); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// JSONReport is the serialised form of a Report.
type JSONReport struct {
	Name     string            `json:"name"`
	Results  []analysis.Record `json:"results"`
	Failures []JSONFailure     `json:"failures,omitempty"`
}

// JSONFailure names a dataset that produced no result.
type JSONFailure struct {
	Dataset int    `json:"dataset"`
	Error   string `json:"error"`
}

// WriteJSON writes the flat records of report as indented JSON.
func WriteJSON(w io.Writer, report analysis.Report) error {
	out := JSONReport{Name: report.Name, Results: []analysis.Record{}}
	for _, d := range report.Datasets {
		if d.Err != nil {
			out.Failures = append(out.Failures, JSONFailure{Dataset: d.Dataset, Error: d.Err.Error()})
			continue
		}

		out.Results = append(out.Results, d.Result.Record())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
