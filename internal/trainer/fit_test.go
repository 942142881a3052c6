package trainer

import (
	"math/rand"
	"testing"
	"time"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratchnet/internal/dataset"
	"scratchnet/internal/matrix"
	"scratchnet/internal/metrics"
	"scratchnet/internal/model"
)

func scenarioData(t *testing.T) *dataset.Dataset {
	t.Helper()
	return must.M1(dataset.Synthetic(dataset.SyntheticOptions{Samples: 100, Noise: 1, Seed: 1}))
}

func TestFitEndToEndScenario(t *testing.T) {
	data := scenarioData(t)
	type report struct {
		iter int
		loss float64
	}
	var reports []report
	res, err := Fit(data.X, data.Y, Options{
		Hidden:       32,
		LearningRate: 1e-4,
		Iterations:   200,
		Seed:         2,
		ReportEvery:  10,
		Report: func(iter int, loss float64) {
			reports = append(reports, report{iter, loss})
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Losses, 200)
	require.Len(t, reports, 20)
	for i, r := range reports {
		assert.Equal(t, (i+1)*10, r.iter)
		assert.Equal(t, res.Losses[r.iter-1], r.loss)
	}

	h := metrics.FromLosses(res.Losses)
	assert.False(t, h.NonFinite())
	assert.Greater(t, h.Initial(), 100.0, "untrained loss should be in the hundreds or more")
	assert.Less(t, h.Ratio(), 0.1, "initial=%.2f final=%.2f", h.Initial(), h.Final())
	assert.Less(t, reports[len(reports)-1].loss, reports[0].loss)
}

func TestFitDescendsUnderSmallLearningRate(t *testing.T) {
	data := scenarioData(t)
	res, err := Fit(data.X, data.Y, Options{Hidden: 32, LearningRate: 1e-5, Iterations: 20, Seed: 2})
	require.NoError(t, err)
	h := metrics.FromLosses(res.Losses)
	assert.True(t, h.Decreasing(19), "losses: %v", res.Losses)
}

func TestFitDivergesUnderLargeLearningRate(t *testing.T) {
	data := scenarioData(t)
	res, err := Fit(data.X, data.Y, Options{Hidden: 32, LearningRate: 0.5, Iterations: 50, Seed: 2})
	require.NoError(t, err, "divergence is not an error")
	require.Len(t, res.Losses, 50)
	assert.True(t, metrics.FromLosses(res.Losses).Diverged(), "losses: %v", res.Losses)
}

func TestFitDeterministic(t *testing.T) {
	data := scenarioData(t)
	opts := Options{Hidden: 8, LearningRate: 1e-4, Iterations: 25, Seed: 9}
	a := must.M1(Fit(data.X, data.Y, opts))
	b := must.M1(Fit(data.X, data.Y, opts))
	assert.Equal(t, a.Losses, b.Losses)
	assert.True(t, a.Params.Equal(b.Params))
	assert.True(t, a.Initial.Equal(b.Initial))

	opts.Seed = 10
	c := must.M1(Fit(data.X, data.Y, opts))
	assert.False(t, a.Initial.Equal(c.Initial))
}

func TestFitZeroIterations(t *testing.T) {
	data := scenarioData(t)
	called := false
	res, err := Fit(data.X, data.Y, Options{
		Hidden: 4, LearningRate: 1e-4, Iterations: 0, Seed: 3,
		OnStep: func(int, float64, time.Duration) { called = true },
	})
	require.NoError(t, err)
	assert.Empty(t, res.Losses)
	assert.False(t, called)
	assert.True(t, res.Params.Equal(res.Initial))

	fresh := must.M1(model.NewTwoLayer(3, 4, 1, 1e-4, rand.New(rand.NewSource(3))))
	assert.True(t, res.Params.Equal(fresh.Params()))
}

func TestFitShapesNeverChange(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	x := matrix.RandN(12, 5, rng)
	y := matrix.RandN(12, 2, rng)
	want := [4]matrix.Shape{{Rows: 5, Cols: 7}, {Rows: 1, Cols: 7}, {Rows: 7, Cols: 2}, {Rows: 1, Cols: 2}}
	for _, iters := range []int{0, 1, 7} {
		steps := 0
		res, err := Fit(x, y, Options{
			Hidden: 7, LearningRate: 1e-3, Iterations: iters, Seed: 1,
			OnStep: func(int, float64, time.Duration) { steps++ },
		})
		require.NoError(t, err)
		assert.Equal(t, want, res.Params.Shapes(), "iterations=%d", iters)
		assert.Equal(t, want, res.Initial.Shapes(), "iterations=%d", iters)
		assert.Equal(t, iters, steps)
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	x := matrix.RandN(10, 3, rng)

	_, err := Fit(x, matrix.RandN(9, 1, rng), Options{Hidden: 4, LearningRate: 1e-3, Iterations: 1})
	assert.True(t, errors.Is(err, matrix.ErrShapeMismatch), "got %v", err)

	_, err = Fit(x, matrix.RandN(10, 1, rng), Options{Hidden: 0, LearningRate: 1e-3, Iterations: 1})
	assert.Error(t, err)
	_, err = Fit(x, matrix.RandN(10, 1, rng), Options{Hidden: 4, LearningRate: 0, Iterations: 1})
	assert.Error(t, err)
	_, err = Fit(x, matrix.RandN(10, 1, rng), Options{Hidden: 4, LearningRate: 1e-3, Iterations: -1})
	assert.Error(t, err)
}

// scriptedModel replays fixed losses and fails once they run out.
type scriptedModel struct {
	losses []float64
	calls  int
}

func (m *scriptedModel) TrainStep(model.Batch) (float64, error) {
	if m.calls >= len(m.losses) {
		return 0, errors.New("out of losses")
	}
	m.calls++
	return m.losses[m.calls-1], nil
}

func TestTrainDrivesAnyModel(t *testing.T) {
	m := &scriptedModel{losses: []float64{5, 4, 3, 2, 1, 0.5}}
	var reported []int
	losses, err := train(m, model.Batch{}, Options{
		Iterations:  6,
		ReportEvery: 3,
		Report:      func(iter int, _ float64) { reported = append(reported, iter) },
	})
	require.NoError(t, err)
	assert.Equal(t, m.losses, losses)
	assert.Equal(t, []int{3, 6}, reported)

	m = &scriptedModel{losses: []float64{1, 2}}
	_, err = train(m, model.Batch{}, Options{Iterations: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iteration 3")
	assert.Equal(t, 2, m.calls)
}
