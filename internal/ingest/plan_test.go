package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanForBoundaries(t *testing.T) {
	tests := []struct {
		n    int
		want Plan
	}{
		{0, Plan{Action: ActionIngest, Chunk: 0, Start: 0, End: 25}},
		{1, Plan{Action: ActionIngest, Chunk: 1, Start: 25, End: 50}},
		{25, Plan{Action: ActionIngest, Chunk: 1, Start: 25, End: 50}},
		{26, Plan{Action: ActionIngest, Chunk: 2, Start: 50, End: 75}},
		{50, Plan{Action: ActionIngest, Chunk: 2, Start: 50, End: 75}},
		{51, Plan{Action: ActionIngest, Chunk: 3, Start: 75, End: 100}},
		{75, Plan{Action: ActionIngest, Chunk: 3, Start: 75, End: 100}},
		{76, Plan{Action: ActionReport, Chunk: -1}},
		{100, Plan{Action: ActionReport, Chunk: -1}},
		{101, Plan{Action: ActionNone, Chunk: -1}},
		{5000, Plan{Action: ActionNone, Chunk: -1}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, PlanFor(tt.n))
		})
	}
}

func TestPlanBoundsClamp(t *testing.T) {
	tests := []struct {
		name               string
		plan               Plan
		size               int
		wantStart, wantEnd int
	}{
		{"full chunk", PlanFor(0), 100, 0, 25},
		{"short dataset", PlanFor(0), 3, 0, 3},
		{"partial last chunk", PlanFor(60), 90, 75, 90},
		{"past the end", PlanFor(30), 40, 40, 40},
		{"empty dataset", PlanFor(0), 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.plan.Bounds(tt.size)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestPlanString(t *testing.T) {
	assert.Equal(t, "ingest chunk 2 [50:75)", PlanFor(30).String())
	assert.Equal(t, "report", PlanFor(80).String())
	assert.Equal(t, "none", PlanFor(200).String())
}
