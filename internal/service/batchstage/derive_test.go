package batchstage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardrip/cardrip/internal/models"
)

func TestDerive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		counts map[models.PackFulfillmentStatus]int64
		want   models.BatchStage
	}{
		{
			name:   "no packs",
			counts: map[models.PackFulfillmentStatus]int64{},
			want:   models.BatchStageInventoryReady,
		},
		{
			name:   "all online",
			counts: map[models.PackFulfillmentStatus]int64{models.PackStatusOnline: 5},
			want:   models.BatchStageInventoryReady,
		},
		{
			name:   "all ready for packing",
			counts: map[models.PackFulfillmentStatus]int64{models.PackStatusReadyForPacking: 3},
			want:   models.BatchStageInventoryReady,
		},
		{
			name: "some packed some ready",
			counts: map[models.PackFulfillmentStatus]int64{
				models.PackStatusPacked:          2,
				models.PackStatusReadyForPacking: 1,
			},
			want: models.BatchStagePacking,
		},
		{
			name:   "single packed pack",
			counts: map[models.PackFulfillmentStatus]int64{models.PackStatusPacked: 1},
			want:   models.BatchStagePacked,
		},
		{
			name:   "all packed",
			counts: map[models.PackFulfillmentStatus]int64{models.PackStatusPacked: 4},
			want:   models.BatchStagePacked,
		},
		{
			name: "packed and loaded mix",
			counts: map[models.PackFulfillmentStatus]int64{
				models.PackStatusPacked: 2,
				models.PackStatusLoaded: 1,
			},
			want: models.BatchStagePacking,
		},
		{
			name:   "all loaded",
			counts: map[models.PackFulfillmentStatus]int64{models.PackStatusLoaded: 3},
			want:   models.BatchStageLoaded,
		},
		{
			name: "loaded with one online",
			counts: map[models.PackFulfillmentStatus]int64{
				models.PackStatusLoaded: 2,
				models.PackStatusOnline: 1,
			},
			want: models.BatchStagePacking,
		},
		{
			name: "online and ready mix",
			counts: map[models.PackFulfillmentStatus]int64{
				models.PackStatusOnline:          2,
				models.PackStatusReadyForPacking: 2,
			},
			want: models.BatchStageInventoryReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.counts)

			require.Equal(t, tt.want, got)
		})
	}

	t.Run("deterministic", func(t *testing.T) {
		counts := map[models.PackFulfillmentStatus]int64{
			models.PackStatusPacked:          7,
			models.PackStatusReadyForPacking: 1,
		}

		first := Derive(counts)
		second := Derive(counts)

		require.Equal(t, first, second, "same counts must derive the same stage")
	})
}
