package model_test

import (
	"testing"

	"github.com/masykurm/talent-scout/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionResearch(t *testing.T) {
	t.Run("forward transitions are allowed", func(t *testing.T) {
		assert.True(t, model.CanTransitionResearch(model.ResearchStatusPending, model.ResearchStatusInProgress))
		assert.True(t, model.CanTransitionResearch(model.ResearchStatusInProgress, model.ResearchStatusCompleted))
		assert.True(t, model.CanTransitionResearch(model.ResearchStatusInProgress, model.ResearchStatusFailed))
	})

	t.Run("backward transitions are rejected", func(t *testing.T) {
		assert.False(t, model.CanTransitionResearch(model.ResearchStatusInProgress, model.ResearchStatusPending))
		assert.False(t, model.CanTransitionResearch(model.ResearchStatusCompleted, model.ResearchStatusInProgress))
	})

	t.Run("terminal states have no outgoing transitions", func(t *testing.T) {
		for _, terminal := range []string{model.ResearchStatusCompleted, model.ResearchStatusFailed} {
			for _, next := range []string{
				model.ResearchStatusPending,
				model.ResearchStatusInProgress,
				model.ResearchStatusCompleted,
				model.ResearchStatusFailed,
			} {
				assert.False(t, model.CanTransitionResearch(terminal, next), "%s -> %s", terminal, next)
			}
		}
	})

	t.Run("pending cannot jump straight to a terminal state", func(t *testing.T) {
		assert.False(t, model.CanTransitionResearch(model.ResearchStatusPending, model.ResearchStatusCompleted))
		assert.False(t, model.CanTransitionResearch(model.ResearchStatusPending, model.ResearchStatusFailed))
	})
}

func TestResearchTerminal(t *testing.T) {
	assert.False(t, (&model.Research{Status: model.ResearchStatusPending}).Terminal())
	assert.False(t, (&model.Research{Status: model.ResearchStatusInProgress}).Terminal())
	assert.True(t, (&model.Research{Status: model.ResearchStatusCompleted}).Terminal())
	assert.True(t, (&model.Research{Status: model.ResearchStatusFailed}).Terminal())
}
