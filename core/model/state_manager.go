// Package model holds the fitted-state bookkeeping and the small interfaces
// shared by the estimators of the predictor.
package model

import (
	"sync"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// StateManager tracks whether an estimator has been fitted, and on how much data.
// Estimators hold one by composition.
type StateManager struct {
	mu sync.RWMutex

	name      string
	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager creates a StateManager for the estimator called name.
func NewStateManager(name string) *StateManager {
	return &StateManager{name: name}
}

// IsFitted returns whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the estimator as fitted on nSamples rows of nFeatures columns.
func (s *StateManager) SetFitted(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// Reset returns the estimator to the unfitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}

// Dimensions returns the number of features and samples seen during fitting.
func (s *StateManager) Dimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns a NotFittedError naming method when the estimator is unfitted.
func (s *StateManager) RequireFitted(method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(s.name, method)
	}
	return nil
}

// State is a snapshot of a StateManager, used in logs and run records.
type State struct {
	Name      string `json:"name"`
	Fitted    bool   `json:"fitted"`
	NFeatures int    `json:"n_features,omitempty"`
	NSamples  int    `json:"n_samples,omitempty"`
}

// State returns a snapshot of the current state.
func (s *StateManager) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Name:      s.name,
		Fitted:    s.fitted,
		NFeatures: s.nFeatures,
		NSamples:  s.nSamples,
	}
}
