package factor

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/aouyang1/go-densematrix/dense"
	"github.com/aouyang1/go-densematrix/matrixutil"
)

var (
	ErrNoFeedback       = errors.New("no feedback matrix")
	ErrNoPositives      = errors.New("feedback has no positive entries")
	ErrNoSamplableUsers = errors.New("no user has both a positive and a negative item")
	ErrNotFitted        = errors.New("model has not been fit")
)

// Epoch summarizes the model after one pass of stochastic updates
type Epoch struct {
	Iteration int     `json:"iteration"`
	Objective float64 `json:"objective"`
	AUC       float64 `json:"auc"`
	UserNorm  float64 `json:"user_norm"`
	ItemNorm  float64 `json:"item_norm"`
}

type triple struct {
	u, i, j int
}

// BPRMF learns user and item latent factors from implicit feedback by
// maximizing the Bayesian Personalized Ranking criterion with stochastic
// gradient ascent over (user, positive item, negative item) triples.
type BPRMF struct {
	opt *Options
	rng *rand.Rand

	feedback  *dense.Dense[uint8]
	positives [][]int
	users     []int
	numPos    int
	density   float64

	userFactors *dense.Dense[float64]
	itemFactors *dense.Dense[float64]
	bias        *dense.Dense[float64]
	itemBias    []float64

	eval    []triple
	history []Epoch
}

// New creates a new BPR matrix factorization model. If no options are provided
// a default is used.
func New(opt *Options) (*BPRMF, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options, %w", err)
	}
	return &BPRMF{
		opt: opt,
		rng: rand.New(rand.NewPCG(opt.Seed, opt.Seed^0x5851f42d4c957f2d)),
	}, nil
}

// Fit trains the model on a users by items feedback matrix where any non zero
// cell marks a positive interaction. A failed Fit leaves a previously fit
// model untouched.
func (b *BPRMF) Fit(feedback *dense.Dense[uint8]) error {
	if feedback == nil {
		return ErrNoFeedback
	}
	if matrixutil.Max(feedback) == 0 {
		return ErrNoPositives
	}
	idx, err := indexFeedback(feedback)
	if err != nil {
		return err
	}
	userFactors, itemFactors, bias, err := b.initFactors(feedback)
	if err != nil {
		return err
	}

	b.feedback = feedback
	b.positives = idx.positives
	b.users = idx.users
	b.numPos = idx.numPos
	b.density = idx.density
	b.userFactors = userFactors
	b.itemFactors = itemFactors
	b.bias = bias
	b.itemBias, _ = bias.RowView(0)

	b.eval = make([]triple, 0, b.opt.EvalSamples)
	for len(b.eval) < b.opt.EvalSamples {
		b.eval = append(b.eval, b.sampleTriple())
	}

	slog.Info("fitting bpr matrix factorization",
		"users", feedback.Rows(),
		"items", feedback.Cols(),
		"positives", b.numPos,
		"density", b.density,
		"samplable_users", len(b.users),
		"factors", b.opt.NumFactors,
	)

	b.history = make([]Epoch, 0, b.opt.Iterations)
	for it := 0; it < b.opt.Iterations; it++ {
		for n := 0; n < b.numPos; n++ {
			b.update(b.sampleTriple())
		}

		epoch := b.evaluate(it + 1)
		if math.IsNaN(epoch.Objective) || math.IsInf(epoch.Objective, 0) {
			slog.Warn("bpr objective diverged, consider lowering the learn rate", "iteration", epoch.Iteration, "learn_rate", b.opt.LearnRate)
		}
		slog.Debug("bpr iteration",
			"iteration", epoch.Iteration,
			"objective", epoch.Objective,
			"auc", epoch.AUC,
			"user_norm", epoch.UserNorm,
			"item_norm", epoch.ItemNorm,
		)
		b.history = append(b.history, epoch)
	}
	return nil
}

type feedbackIndex struct {
	positives [][]int
	users     []int
	numPos    int
	density   float64
}

func indexFeedback(feedback *dense.Dense[uint8]) (*feedbackIndex, error) {
	numUsers, numItems := feedback.Dims()
	idx := &feedbackIndex{positives: make([][]int, numUsers)}

	var activity float64
	for u := 0; u < numUsers; u++ {
		avg, err := matrixutil.RowAverage(feedback, u)
		if err != nil {
			return nil, err
		}
		activity += avg

		row, err := feedback.RowView(u)
		if err != nil {
			return nil, err
		}
		for i, v := range row {
			if v != 0 {
				idx.positives[u] = append(idx.positives[u], i)
			}
		}
		idx.numPos += len(idx.positives[u])

		// a user needs at least one positive and one negative to form a triple
		if len(idx.positives[u]) == 0 || len(idx.positives[u]) == numItems {
			slog.Debug("skipping user for sampling", "user", u, "positives", len(idx.positives[u]))
			continue
		}
		idx.users = append(idx.users, u)
	}
	if len(idx.users) == 0 {
		return nil, ErrNoSamplableUsers
	}
	idx.density = activity / float64(numUsers)
	return idx, nil
}

func (b *BPRMF) initFactors(feedback *dense.Dense[uint8]) (userFactors, itemFactors, bias *dense.Dense[float64], err error) {
	numUsers, numItems := feedback.Dims()

	userFactors, err = b.newFactors(numUsers)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to initialize user factors, %w", err)
	}
	itemFactors, err = b.newFactors(numItems)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to initialize item factors, %w", err)
	}
	bias, err = dense.New[float64](1, numItems)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to initialize item bias, %w", err)
	}
	return userFactors, itemFactors, bias, nil
}

// newFactors draws every cell from a normal distribution with the configured
// mean and standard deviation
func (b *BPRMF) newFactors(rows int) (*dense.Dense[float64], error) {
	m, err := dense.New[float64](rows, b.opt.NumFactors)
	if err != nil {
		return nil, err
	}
	data := m.RawData()
	for i := range data {
		data[i] = b.rng.NormFloat64()
	}
	matrixutil.MultiplyScalar(m, b.opt.InitStdDev)
	matrixutil.IncScalar(m, b.opt.InitMean)
	return m, nil
}

func (b *BPRMF) sampleTriple() triple {
	u := b.users[b.rng.IntN(len(b.users))]
	pos := b.positives[u]
	i := pos[b.rng.IntN(len(pos))]

	row, _ := b.feedback.RowView(u)
	j := b.rng.IntN(len(row))
	for row[j] != 0 {
		j = b.rng.IntN(len(row))
	}
	return triple{u: u, i: i, j: j}
}

// margin is how much more user u is predicted to prefer item i over item j
func (b *BPRMF) margin(t triple) (float64, error) {
	x, err := matrixutil.RowDotRowDifference(b.userFactors, t.u, b.itemFactors, t.i, b.itemFactors, t.j)
	if err != nil {
		return 0, err
	}
	return b.itemBias[t.i] - b.itemBias[t.j] + x, nil
}

func (b *BPRMF) update(t triple) {
	x, err := b.margin(t)
	if err != nil {
		slog.Error("unable to score triple", "user", t.u, "positive", t.i, "negative", t.j, "error", err.Error())
		return
	}
	g := 1.0 / (1.0 + math.Exp(x))
	lr := b.opt.LearnRate

	b.itemBias[t.i] += lr * (g - b.opt.RegBias*b.itemBias[t.i])
	b.itemBias[t.j] += lr * (-g - b.opt.RegBias*b.itemBias[t.j])

	w, _ := b.userFactors.RowView(t.u)
	hi, _ := b.itemFactors.RowView(t.i)
	hj, _ := b.itemFactors.RowView(t.j)
	for f := range w {
		wuf, hif, hjf := w[f], hi[f], hj[f]
		w[f] += lr * ((hif-hjf)*g - b.opt.RegUser*wuf)
		hi[f] += lr * (wuf*g - b.opt.RegPositive*hif)
		hj[f] += lr * (-wuf*g - b.opt.RegNegative*hjf)
	}
}

func (b *BPRMF) evaluate(iteration int) Epoch {
	var logLik float64
	var correct int
	for _, t := range b.eval {
		x, err := b.margin(t)
		if err != nil {
			continue
		}
		logLik += logSigmoid(x)
		if x > 0 {
			correct++
		}
	}
	n := float64(len(b.eval))
	return Epoch{
		Iteration: iteration,
		Objective: logLik / n,
		AUC:       float64(correct) / n,
		UserNorm:  matrixutil.FrobeniusNorm(b.userFactors),
		ItemNorm:  matrixutil.FrobeniusNorm(b.itemFactors),
	}
}

func logSigmoid(x float64) float64 {
	if x < -30 {
		return x
	}
	return -math.Log1p(math.Exp(-x))
}

// Predict returns the ranking score of item for user
func (b *BPRMF) Predict(user, item int) (float64, error) {
	if b.userFactors == nil {
		return 0, ErrNotFitted
	}
	score, err := matrixutil.RowDotRow(b.userFactors, user, b.itemFactors, item)
	if err != nil {
		return 0, fmt.Errorf("user %d item %d, %w", user, item, err)
	}
	return score + b.itemBias[item], nil
}

// Margin returns how much more user is predicted to prefer item i over item j
func (b *BPRMF) Margin(user, i, j int) (float64, error) {
	if b.userFactors == nil {
		return 0, ErrNotFitted
	}
	x, err := b.margin(triple{u: user, i: i, j: j})
	if err != nil {
		return 0, fmt.Errorf("user %d items %d and %d, %w", user, i, j, err)
	}
	return x, nil
}

func (b *BPRMF) History() []Epoch {
	res := make([]Epoch, len(b.history))
	copy(res, b.history)
	return res
}

// UserFactors returns a copy of the learned user factor matrix
func (b *BPRMF) UserFactors() (*dense.Dense[float64], error) {
	if b.userFactors == nil {
		return nil, ErrNotFitted
	}
	return b.userFactors.Copy(), nil
}

// ItemFactors returns a copy of the learned item factor matrix
func (b *BPRMF) ItemFactors() (*dense.Dense[float64], error) {
	if b.itemFactors == nil {
		return nil, ErrNotFitted
	}
	return b.itemFactors.Copy(), nil
}
