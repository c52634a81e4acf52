package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cognerd/internal/fuzzy"
	"cognerd/internal/truth"
)

func TestSummaryOfEqualFactors(t *testing.T) {
	v := New(0.9, 0.9, 0.9)
	assert.InDelta(t, 0.9, v.Summary(), 1e-9)
	assert.True(t, v.AboveThreshold())
}

func TestAboveThresholdBoundary(t *testing.T) {
	assert.True(t, New(Threshold, Threshold, Threshold).AboveThreshold())
	assert.False(t, New(0.001, 0.001, 0.001).AboveThreshold())
	assert.False(t, Value{}.AboveThreshold())
}

func TestNewClampsBelowOne(t *testing.T) {
	v := New(1.5, 1, -3)
	assert.Equal(t, fuzzy.Max, v.Priority())
	assert.Equal(t, fuzzy.Max, v.Durability())
	assert.Equal(t, 0.0, v.Quality())
}

func TestIncDec(t *testing.T) {
	v := New(0.5, 0.5, 0.5)
	v.IncPriority(0.5)
	assert.InDelta(t, 0.75, v.Priority(), 1e-9)
	v.DecPriority(0.5)
	assert.InDelta(t, 0.375, v.Priority(), 1e-9)
	v.DecPriority(0)
	assert.Equal(t, 0.0, v.Priority())
}

func TestMergeWithSelf(t *testing.T) {
	for _, p := range []float64{0, 0.1, 0.5, 0.9} {
		v := New(p, 0.4, 0.7)
		v.Merge(v)
		assert.InDelta(t, 1-(1-p)*(1-p), v.Priority(), 1e-9)
		assert.GreaterOrEqual(t, v.Priority(), p)
		assert.Equal(t, 0.4, v.Durability())
		assert.Equal(t, 0.7, v.Quality())
	}
}

func TestMergeTakesMaxima(t *testing.T) {
	v := New(0.2, 0.9, 0.1)
	v.Merge(New(0.3, 0.5, 0.6))
	assert.InDelta(t, fuzzy.Or(0.2, 0.3), v.Priority(), 1e-9)
	assert.Equal(t, 0.9, v.Durability())
	assert.Equal(t, 0.6, v.Quality())
}

func TestForgetNeverIncreasesPriority(t *testing.T) {
	v := New(0.9, 0.8, 0.5)
	prev := v.Priority()
	for i := 0; i < 500; i++ {
		Forget(&v, 10, 0.1)
		assert.LessOrEqual(t, v.Priority(), prev)
		prev = v.Priority()
	}
	assert.InDelta(t, 0.5*0.1, v.Priority(), 0.01)
}

func TestForgetBelowFloorIsNoop(t *testing.T) {
	v := New(0.01, 0.8, 0.9)
	Forget(&v, 10, 0.1)
	assert.Equal(t, 0.01, v.Priority())
}

func TestForgetHighDurabilityDecaysSlower(t *testing.T) {
	slow := New(0.8, 0.95, 0.1)
	fast := New(0.8, 0.3, 0.1)
	Forget(&slow, 10, 0.1)
	Forget(&fast, 10, 0.1)
	assert.Greater(t, slow.Priority(), fast.Priority())
}

func TestActivate(t *testing.T) {
	c := New(0.5, 0.2, 0.3)
	Activate(&c, New(0.5, 0.8, 0.9), 0.4)
	assert.InDelta(t, 0.75, c.Priority(), 1e-9)
	// weight of the old durability is 0.5 / 0.75
	assert.InDelta(t, (0.5/0.75)*0.2+(0.25/0.75)*0.8, c.Durability(), 1e-9)
	assert.Equal(t, 0.4, c.Quality())
}

func TestActivateFromZero(t *testing.T) {
	var c Value
	Activate(&c, Value{}, 0.5)
	assert.Equal(t, 0.0, c.Priority())
	assert.Equal(t, 0.5, c.Quality())
}

func TestDistributeAmongLinks(t *testing.T) {
	v := DistributeAmongLinks(New(0.8, 0.5, 0.4), 4)
	assert.InDelta(t, 0.4, v.Priority(), 1e-9)
	assert.Equal(t, 0.5, v.Durability())
	assert.Equal(t, 0.4, v.Quality())
}

func TestRankBeliefPrefersConfidence(t *testing.T) {
	assert.Greater(t, RankBelief(0.9, 1), RankBelief(0.5, 1))
	assert.Greater(t, RankBelief(0.5, 1), RankBelief(0.5, 4))
}

func TestReviseDiscountsTask(t *testing.T) {
	task := New(0.8, 0.8, 0.9)
	tt := truth.New(1, 0.9)
	bt := truth.New(1, 0.9)
	revised := truth.Revision(tt, bt)
	out := Revise(&task, tt, bt, revised)
	assert.Less(t, task.Priority(), 0.8)
	assert.True(t, out.AboveThreshold())
}

func TestSolutionEval(t *testing.T) {
	q := New(0.9, 0.9, 0.9)
	answer, ok := SolutionEval(&q, 0.9, false, truth.New(1, 0.9))
	assert.True(t, ok)
	assert.InDelta(t, fuzzy.Or(0.9, 0.9), answer.Priority(), 1e-9)
	assert.InDelta(t, 0.1, q.Priority(), 1e-9)

	j := New(0.5, 0.5, 0.5)
	_, ok = SolutionEval(&j, 0.5, true, truth.New(1, 0.9))
	assert.False(t, ok)
	assert.InDelta(t, 0.75, j.Priority(), 1e-9)
}

func TestInferRewardsBeliefLink(t *testing.T) {
	link := New(0.6, 0.6, 0.6)
	belief := New(0.2, 0.2, 0.2)
	out := Infer(0.8, 2, link, &belief, 0.3)
	assert.InDelta(t, fuzzy.Or(0.6, 0.2), out.Priority(), 1e-9)
	assert.InDelta(t, 0.4, out.Quality(), 1e-9)
	assert.Greater(t, belief.Priority(), 0.2)
	assert.Greater(t, belief.Durability(), 0.2)

	alone := Infer(0.8, 1, link, nil, 0)
	assert.Equal(t, 0.6, alone.Priority())
}
