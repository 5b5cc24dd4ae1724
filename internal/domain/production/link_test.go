package production_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

func TestLinkAlgorithm_Bounds(t *testing.T) {
	tests := []struct {
		algorithm production.LinkAlgorithm
		lo, hi    float64
	}{
		{production.LinkMatch, 4, 4},
		{production.LinkAllowOverConsumption, math.Inf(-1), 4},
		{production.LinkAllowOverProduction, 4, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm.String(), func(t *testing.T) {
			lo, hi := tt.algorithm.Bounds(4)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestParseLinkAlgorithm(t *testing.T) {
	for _, algorithm := range []production.LinkAlgorithm{
		production.LinkMatch,
		production.LinkAllowOverConsumption,
		production.LinkAllowOverProduction,
	} {
		parsed, err := production.ParseLinkAlgorithm(algorithm.String())
		require.NoError(t, err)
		assert.Equal(t, algorithm, parsed)
	}

	parsed, err := production.ParseLinkAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, production.LinkMatch, parsed)

	_, err = production.ParseLinkAlgorithm("SOMETIMES")
	assert.Error(t, err)
}

func TestFlowLink_ApplyReplaysTransitions(t *testing.T) {
	tests := []struct {
		name    string
		outcome production.LinkOutcome
		state   production.LinkState
	}{
		{"pruned", production.LinkOutcome{Pruned: true}, production.LinkPruned},
		{"matched", production.LinkOutcome{DualValue: 0.5}, production.LinkMatched},
		{"not matched", production.LinkOutcome{NotMatched: true}, production.LinkNotMatched},
		{"recursive", production.LinkOutcome{Recursive: true, NotMatchedFlow: -2}, production.LinkRecursiveNotMatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			network := production.NewFlowNetwork()
			link, err := network.AddLink(1, 0, production.LinkMatch)
			require.NoError(t, err)

			// Act
			err = link.Apply(tt.outcome)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.state, link.State())
			assert.Equal(t, tt.outcome.DualValue, link.DualValue())
			assert.Equal(t, tt.outcome.NotMatchedFlow, link.NotMatchedFlow())
			assert.Equal(t, tt.state != production.LinkMatched, link.IsNotMatched())
		})
	}
}

func TestFlowLink_ApplyResetsPreviousOutcome(t *testing.T) {
	// Arrange
	network := production.NewFlowNetwork()
	link, err := network.AddLink(1, 0, production.LinkMatch)
	require.NoError(t, err)
	require.NoError(t, link.Apply(production.LinkOutcome{Recursive: true, NotMatchedFlow: 3}))

	// Act
	err = link.Apply(production.LinkOutcome{})

	// Assert
	require.NoError(t, err)
	assert.True(t, link.IsMatched())
	assert.Zero(t, link.NotMatchedFlow())
}
