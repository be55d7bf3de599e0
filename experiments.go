package main

import (
	"fmt"
	"sort"
	"time"
)

// Experiments manages A/B tests over a single content variable, like
// hook type or posting hour.
type Experiments struct {
	session *Session
}

func NewExperiments(session *Session) *Experiments {
	return &Experiments{session: session}
}

func (e *Experiments) key(id string) string {
	return e.session.key("experiments", id)
}

// Create registers a draft experiment with at least two variants.
func (e *Experiments) Create(hypothesis, variable string, variants []string) (*Experiment, error) {
	if hypothesis == "" {
		return nil, &ValidationError{Field: "hypothesis", Reason: "must not be empty"}
	}
	if len(variants) < 2 {
		return nil, &ValidationError{Field: "variants", Reason: "need at least 2 variants"}
	}

	exp := &Experiment{
		ID:         newID(),
		User:       e.session.User,
		Hypothesis: hypothesis,
		Variable:   variable,
		Variants:   variants,
		Status:     ExperimentDraft,
		CreatedAt:  time.Now(),
		Results:    map[string]float64{},
	}
	if err := e.session.Store.Put(e.key(exp.ID), exp); err != nil {
		return nil, err
	}
	e.session.Log.Infof("✓ Created experiment %s (%s)", exp.ID, variable)
	return exp, nil
}

// Get loads one experiment.
func (e *Experiments) Get(id string) (*Experiment, error) {
	var exp Experiment
	if err := e.session.Store.Get(e.key(id), &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

// List returns all experiments, newest first.
func (e *Experiments) List() ([]*Experiment, error) {
	keys, err := e.session.Store.List(e.session.key("experiments"))
	if err != nil {
		return nil, err
	}
	var exps []*Experiment
	for _, key := range keys {
		var exp Experiment
		if err := e.session.Store.Get(key, &exp); err != nil {
			e.session.Log.WithError(err).Warnf("skipping unreadable experiment %s", key)
			continue
		}
		exps = append(exps, &exp)
	}
	sort.Slice(exps, func(i, j int) bool {
		return exps[i].CreatedAt.After(exps[j].CreatedAt)
	})
	return exps, nil
}

// Start moves a draft experiment to running.
func (e *Experiments) Start(id string) (*Experiment, error) {
	exp, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	if exp.Status != ExperimentDraft {
		return nil, fmt.Errorf("cannot start %s experiment %s: %w", exp.Status, id, ErrInvalidTransition)
	}
	now := time.Now()
	exp.Status = ExperimentRunning
	exp.StartedAt = &now
	if err := e.session.Store.Put(e.key(id), exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// RecordResult stores a variant's measured score on a running
// experiment. Re-recording a variant overwrites its score.
func (e *Experiments) RecordResult(id, variant string, score float64) (*Experiment, error) {
	exp, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	if exp.Status != ExperimentRunning {
		return nil, fmt.Errorf("cannot record result on %s experiment %s: %w", exp.Status, id, ErrInvalidTransition)
	}
	known := false
	for _, v := range exp.Variants {
		if v == variant {
			known = true
			break
		}
	}
	if !known {
		return nil, &ValidationError{Field: "variant", Reason: fmt.Sprintf("unknown variant %q", variant)}
	}
	if exp.Results == nil {
		exp.Results = map[string]float64{}
	}
	exp.Results[variant] = score
	if err := e.session.Store.Put(e.key(id), exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// Complete closes a running experiment, picking the highest-scoring
// variant as winner. At least one result is required.
func (e *Experiments) Complete(id, conclusion string) (*Experiment, error) {
	exp, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	if exp.Status != ExperimentRunning {
		return nil, fmt.Errorf("cannot complete %s experiment %s: %w", exp.Status, id, ErrInvalidTransition)
	}
	if len(exp.Results) == 0 {
		return nil, &ValidationError{Field: "results", Reason: "no results recorded"}
	}

	best, bestScore := "", 0.0
	variants := make([]string, 0, len(exp.Results))
	for v := range exp.Results {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	for _, v := range variants {
		if best == "" || exp.Results[v] > bestScore {
			best, bestScore = v, exp.Results[v]
		}
	}

	now := time.Now()
	exp.Status = ExperimentComplete
	exp.EndedAt = &now
	exp.Winner = best
	exp.Conclusion = conclusion
	if err := e.session.Store.Put(e.key(id), exp); err != nil {
		return nil, err
	}
	e.session.Log.Infof("✓ Experiment %s complete, winner: %s (%.2f)", id, best, bestScore)
	return exp, nil
}

// Abort ends a draft or running experiment without a winner.
func (e *Experiments) Abort(id, reason string) (*Experiment, error) {
	exp, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	if exp.Status != ExperimentDraft && exp.Status != ExperimentRunning {
		return nil, fmt.Errorf("cannot abort %s experiment %s: %w", exp.Status, id, ErrInvalidTransition)
	}
	now := time.Now()
	exp.Status = ExperimentAborted
	exp.EndedAt = &now
	exp.Conclusion = reason
	if err := e.session.Store.Put(e.key(id), exp); err != nil {
		return nil, err
	}
	return exp, nil
}
