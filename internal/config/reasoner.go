package config

import "fmt"

// ReasonerConfig holds the attention and control-loop parameters. Forgetting
// cycles are the number of reuses over which a bag applies one full decay.
type ReasonerConfig struct {
	// Bag capacities
	ConceptBagSize   int `yaml:"concept_bag_size"`
	TaskLinkBagSize  int `yaml:"task_link_bag_size"`
	TermLinkBagSize  int `yaml:"term_link_bag_size"`
	NovelTaskBagSize int `yaml:"novel_task_bag_size"`

	// Bag shape
	BagLevels    int `yaml:"bag_levels"`
	BagThreshold int `yaml:"bag_threshold"`

	// Forgetting
	ConceptForgettingCycle  int `yaml:"concept_forgetting_cycle"`
	TaskLinkForgettingCycle int `yaml:"task_link_forgetting_cycle"`
	TermLinkForgettingCycle int `yaml:"term_link_forgetting_cycle"`
	NewTaskForgettingCycle  int `yaml:"new_task_forgetting_cycle"`

	// Concept tables
	MaxBeliefs     int `yaml:"max_beliefs"`
	MaxQuestions   int `yaml:"max_questions"`
	MaxStampLength int `yaml:"max_stamp_length"`

	// Firing
	MaxReasonedTermLinks int `yaml:"max_reasoned_term_links"`
	MaxMatchedTermLinks  int `yaml:"max_matched_term_links"`

	// Steps a task link remembers a term-link pairing before it is novel again.
	TermLinkRecordLength int `yaml:"term_link_record_length"`

	// Novel judgments need an expectation above this to get a concept.
	CreationExpectation float64 `yaml:"creation_expectation"`

	// Derived sentences are reported only when their budget summary exceeds Silence/100.
	Silence int `yaml:"silence"`

	// Input defaults
	JudgmentPriority   float64 `yaml:"judgment_priority"`
	JudgmentDurability float64 `yaml:"judgment_durability"`
	JudgmentConfidence float64 `yaml:"judgment_confidence"`
	QuestionPriority   float64 `yaml:"question_priority"`
	QuestionDurability float64 `yaml:"question_durability"`
}

// DefaultReasonerConfig returns the standard parameter set.
func DefaultReasonerConfig() ReasonerConfig {
	return ReasonerConfig{
		ConceptBagSize:   1000,
		TaskLinkBagSize:  20,
		TermLinkBagSize:  100,
		NovelTaskBagSize: 10,

		BagLevels:    100,
		BagThreshold: 10,

		ConceptForgettingCycle:  10,
		TaskLinkForgettingCycle: 20,
		TermLinkForgettingCycle: 50,
		NewTaskForgettingCycle:  1,

		MaxBeliefs:     7,
		MaxQuestions:   5,
		MaxStampLength: 8,

		MaxReasonedTermLinks: 3,
		MaxMatchedTermLinks:  10,
		TermLinkRecordLength: 10,

		CreationExpectation: 0.66,
		Silence:             0,

		JudgmentPriority:   0.8,
		JudgmentDurability: 0.8,
		JudgmentConfidence: 0.9,
		QuestionPriority:   0.9,
		QuestionDurability: 0.9,
	}
}

// Validate checks ranges in declaration order and reports the first failure.
func (r *ReasonerConfig) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"concept_bag_size", r.ConceptBagSize},
		{"task_link_bag_size", r.TaskLinkBagSize},
		{"term_link_bag_size", r.TermLinkBagSize},
		{"novel_task_bag_size", r.NovelTaskBagSize},
		{"bag_levels", r.BagLevels},
		{"bag_threshold", r.BagThreshold},
		{"concept_forgetting_cycle", r.ConceptForgettingCycle},
		{"task_link_forgetting_cycle", r.TaskLinkForgettingCycle},
		{"term_link_forgetting_cycle", r.TermLinkForgettingCycle},
		{"new_task_forgetting_cycle", r.NewTaskForgettingCycle},
		{"max_beliefs", r.MaxBeliefs},
		{"max_questions", r.MaxQuestions},
		{"max_stamp_length", r.MaxStampLength},
		{"max_reasoned_term_links", r.MaxReasonedTermLinks},
		{"max_matched_term_links", r.MaxMatchedTermLinks},
		{"term_link_record_length", r.TermLinkRecordLength},
	}
	for _, f := range positive {
		if f.value < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", f.name, f.value)
		}
	}
	if r.BagThreshold > r.BagLevels {
		return fmt.Errorf("bag_threshold (%d) exceeds bag_levels (%d)", r.BagThreshold, r.BagLevels)
	}
	if r.Silence < 0 || r.Silence > 100 {
		return fmt.Errorf("silence must be in [0,100], got %d", r.Silence)
	}
	unit := []struct {
		name  string
		value float64
	}{
		{"creation_expectation", r.CreationExpectation},
		{"judgment_priority", r.JudgmentPriority},
		{"judgment_durability", r.JudgmentDurability},
		{"judgment_confidence", r.JudgmentConfidence},
		{"question_priority", r.QuestionPriority},
		{"question_durability", r.QuestionDurability},
	}
	for _, f := range unit {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", f.name, f.value)
		}
	}
	return nil
}

// RelativeThreshold is the fraction of quality decay converges to.
func (r *ReasonerConfig) RelativeThreshold() float64 {
	return float64(r.BagThreshold) / float64(r.BagLevels)
}
