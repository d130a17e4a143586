package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/copa/internal/contracts"
)

func TestScaleKindFor(t *testing.T) {
	tests := []struct {
		ordinal int
		want    ScaleKind
	}{
		{1, ScaleStandard},
		{2, ScaleStandard},
		{3, ScaleStandard},
		{4, ScaleStandard},
		{5, ScaleInverted},
		{6, ScaleInverted},
		{7, ScaleStandard},
	}

	for _, tt := range tests {
		c := &contracts.Criterion{Ordinal: tt.ordinal}
		assert.Equal(t, tt.want, ScaleKindFor(c), "ordinal %d", tt.ordinal)
	}
}

func TestPointsFor(t *testing.T) {
	t.Run("standard scale rewards the top rank with the fewest points", func(t *testing.T) {
		want := []float64{1.0, 1.5, 2.0, 2.5}
		for rank := 1; rank <= 4; rank++ {
			got := PointsFor(ScaleStandard, rank)
			require.NotNil(t, got, "rank %d", rank)
			assert.Equal(t, want[rank-1], *got, "rank %d", rank)
		}
	})

	t.Run("inverted scale mirrors the standard one", func(t *testing.T) {
		want := []float64{2.5, 2.0, 1.5, 1.0}
		for rank := 1; rank <= 4; rank++ {
			got := PointsFor(ScaleInverted, rank)
			require.NotNil(t, got, "rank %d", rank)
			assert.Equal(t, want[rank-1], *got, "rank %d", rank)
		}
	})

	t.Run("ranks outside the scale score nothing", func(t *testing.T) {
		assert.Nil(t, PointsFor(ScaleStandard, 0))
		assert.Nil(t, PointsFor(ScaleStandard, 5))
		assert.Nil(t, PointsFor(ScaleInverted, 6))
	})
}
