package factor

import (
	"github.com/aouyang1/go-densematrix/matrixutil"
)

// Report is a serializable summary of a fit model
type Report struct {
	Options *Options `json:"options"`
	History []Epoch  `json:"history"`

	Users     int `json:"users"`
	Items     int `json:"items"`
	Positives int `json:"positives"`
	// Density is the mean feedback value per cell
	Density float64 `json:"density"`

	// MeanFactor is the average value of each latent dimension across items
	MeanFactor []float64 `json:"mean_factor"`
	MaxBias    float64   `json:"max_bias"`
}

func (b *BPRMF) Report() (*Report, error) {
	if b.itemFactors == nil {
		return nil, ErrNotFitted
	}
	numUsers, numItems := b.feedback.Dims()

	meanFactor := make([]float64, b.opt.NumFactors)
	for f := range meanFactor {
		avg, err := matrixutil.ColumnAverage(b.itemFactors, f)
		if err != nil {
			return nil, err
		}
		meanFactor[f] = avg
	}

	return &Report{
		Options:    b.opt,
		History:    b.History(),
		Users:      numUsers,
		Items:      numItems,
		Positives:  b.numPos,
		Density:    b.density,
		MeanFactor: meanFactor,
		MaxBias:    matrixutil.Max(b.bias),
	}, nil
}
