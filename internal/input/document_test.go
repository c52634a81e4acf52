package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"cognerd/internal/budget"
	"cognerd/internal/config"
	"cognerd/internal/entity"
	"cognerd/internal/stamp"
)

const robinDoc = `
tasks:
  - term: {op: "-->", args: [robin, bird]}
    truth: {frequency: 1, confidence: 0.9}
  - term:
      op: "-->"
      args:
        - robin
        - {op: "&", args: [bird, animal]}
    truth: {frequency: 0.5}
    budget: {priority: 0.3}
  - term: {op: "-->", args: [robin, animal]}
    punctuation: "?"
  - term: tweety
`

func newResolver() *Resolver { return NewResolver(config.DefaultReasonerConfig()) }

func TestParseDocument(t *testing.T) {
	entries, err := newResolver().Parse([]byte(robinDoc))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	first := entries[0]
	assert.Equal(t, "<robin --> bird>", first.Content.Name())
	assert.Equal(t, entity.Judgment, first.Punctuation)
	require.NotNil(t, first.Truth)
	assert.InDelta(t, 0.9, first.Truth.Confidence, 1e-9)
	assert.InDelta(t, 0.8, first.Budget.Priority(), 1e-9)
	assert.InDelta(t, budget.TruthToQuality(*first.Truth), first.Budget.Quality(), 1e-9)

	second := entries[1]
	assert.Equal(t, "<robin --> (&,bird,animal)>", second.Content.Name())
	assert.InDelta(t, 0.5, second.Truth.Frequency, 1e-9)
	assert.InDelta(t, 0.9, second.Truth.Confidence, 1e-9, "default confidence")
	assert.InDelta(t, 0.3, second.Budget.Priority(), 1e-9)
	assert.InDelta(t, 0.8, second.Budget.Durability(), 1e-9)

	q := entries[2]
	assert.Equal(t, entity.Question, q.Punctuation)
	assert.Nil(t, q.Truth)
	assert.InDelta(t, 0.9, q.Budget.Priority(), 1e-9)
	assert.InDelta(t, 0.9, q.Budget.Durability(), 1e-9)

	atom := entries[3]
	assert.Equal(t, "tweety", atom.Content.Name())
	assert.InDelta(t, 1.0, atom.Truth.Frequency, 1e-9)
}

func TestParseErrors(t *testing.T) {
	r := newResolver()
	cases := map[string]string{
		"empty":             "tasks: []",
		"unknown operator":  `tasks: [{term: {op: "=/>", args: [a, b]}}]`,
		"arity":             `tasks: [{term: {op: "-->", args: [a]}}]`,
		"punctuation":       `tasks: [{term: a, punctuation: "!"}]`,
		"question truth":    `tasks: [{term: a, punctuation: "?", truth: {frequency: 1}}]`,
		"frequency range":   `tasks: [{term: a, truth: {frequency: 1.5}}]`,
		"budget range":      `tasks: [{term: a, budget: {durability: -1}}]`,
		"sequence as term":  `tasks: [{term: [a, b]}]`,
		"malformed yaml":    "tasks: [",
		"empty atom":        `tasks: [{term: ""}]`,
		"nested bad member": `tasks: [{term: {op: "-->", args: [a, {op: "?", args: []}]}}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
	_, err := r.Parse([]byte("tasks: []"))
	assert.ErrorIs(t, err, ErrNoTasks)
}

func TestEntryTaskStampsInOrder(t *testing.T) {
	entries, err := newResolver().Parse([]byte(robinDoc))
	require.NoError(t, err)
	serials := stamp.NewSerials()

	a := entries[0].Task(serials, 5)
	q := entries[2].Task(serials, 6)

	assert.True(t, a.IsInput())
	assert.Equal(t, []int64{1}, a.Sentence().Stamp.Base())
	assert.Equal(t, int64(5), a.Sentence().Stamp.Creation())
	assert.True(t, q.Sentence().IsQuestion())
	assert.Equal(t, []int64{2}, q.Sentence().Stamp.Base())
}

func TestTermSpecRoundTrip(t *testing.T) {
	spec := TermSpec{Op: "-->", Args: []TermSpec{{Atom: "robin"}, {Op: "{}", Args: []TermSpec{{Atom: "tweety"}}}}}
	out, err := yaml.Marshal(spec)
	require.NoError(t, err)

	var back TermSpec
	require.NoError(t, yaml.Unmarshal(out, &back))
	built, err := back.Build()
	require.NoError(t, err)
	assert.Equal(t, "<robin --> {tweety}>", built.Name())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "robin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(robinDoc), 0644))

	entries, err := newResolver().ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	_, err = newResolver().ParseFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
