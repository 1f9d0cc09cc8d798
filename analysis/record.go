package analysis

// Record is the flat, persistable view of a Result. Energies are in eV.
type Record struct {
	Dataset          int      `json:"dataset"`
	Eg               float64  `json:"eg"`
	EbRydberg        float64  `json:"eb_rydberg"`
	EbGroundState    float64  `json:"eb_ground_state"`
	Gamma            float64  `json:"gamma"`
	Ucvsq            float64  `json:"ucvsq"`
	Mhcnp            float64  `json:"mhcnp"`
	Q                float64  `json:"q"`
	Deff             float64  `json:"deff"`
	RSquared         float64  `json:"r_squared"`
	SSE              float64  `json:"sse"`
	UrbachEnergy     *float64 `json:"urbach_energy"`
	UrbachSlope      *float64 `json:"urbach_slope"`
	UrbachIntercept  *float64 `json:"urbach_intercept"`
	BoundaryWarnings []string `json:"boundary_warnings"`
	QWarning         *string  `json:"q_warning"`
	Converged        bool     `json:"converged"`
	NormEnergy       float64  `json:"norm_energy"`
	NormAbsorption   float64  `json:"norm_absorption"`
}

// Record flattens r. Absent values become nil pointers.
func (r Result) Record() Record {
	rec := Record{
		Dataset:          r.Dataset,
		Eg:               r.Params.Eg,
		EbRydberg:        r.Params.Eb,
		EbGroundState:    r.EbGroundState,
		Gamma:            r.Params.Gamma,
		Ucvsq:            r.Params.Ucvsq,
		Mhcnp:            r.Params.Mhcnp,
		Q:                r.Params.Q,
		Deff:             r.Deff,
		RSquared:         r.RSquared,
		SSE:              r.SSE,
		BoundaryWarnings: append([]string{}, r.Saturated...),
		Converged:        r.Converged,
		NormEnergy:       r.Normalization.Energy,
		NormAbsorption:   r.Normalization.Absorption,
	}

	if r.Urbach != nil {
		e, s, i := r.Urbach.Energy, r.Urbach.Slope, r.Urbach.Intercept
		rec.UrbachEnergy, rec.UrbachSlope, rec.UrbachIntercept = &e, &s, &i
	}

	if r.QWarning != "" {
		w := r.QWarning
		rec.QWarning = &w
	}

	return rec
}
