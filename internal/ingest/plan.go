// Package ingest walks the enriched bestseller dataset into the store one
// chunk per run, choosing the chunk from the number of rows already stored.
package ingest

import "fmt"

const (
	// ChunkSize is the number of records persisted per run.
	ChunkSize = 25
	// ChunkCount is the number of chunks before the store is considered full.
	ChunkCount = 4
)

// Action is what a run does for a given stored row count.
type Action int

const (
	ActionIngest Action = iota
	ActionReport
	ActionNone
)

func (a Action) String() string {
	switch a {
	case ActionIngest:
		return "ingest"
	case ActionReport:
		return "report"
	default:
		return "none"
	}
}

// Plan is the decision for one run.
type Plan struct {
	Action Action
	// Chunk is the zero-based chunk index; -1 unless Action is ActionIngest.
	Chunk int
	Start int
	End   int
}

// PlanFor maps the stored row count n to the run's action:
//
//	n < 1        chunk 0  [0:25)
//	n < 26       chunk 1  [25:50)
//	n < 51       chunk 2  [50:75)
//	n < 76       chunk 3  [75:100)
//	n < 101      report
//	otherwise    nothing
func PlanFor(n int) Plan {
	switch {
	case n < 1:
		return chunkPlan(0)
	case n < ChunkCount*ChunkSize-ChunkSize+1:
		return chunkPlan((n-1)/ChunkSize + 1)
	case n < ChunkCount*ChunkSize+1:
		return Plan{Action: ActionReport, Chunk: -1}
	default:
		return Plan{Action: ActionNone, Chunk: -1}
	}
}

func chunkPlan(chunk int) Plan {
	return Plan{
		Action: ActionIngest,
		Chunk:  chunk,
		Start:  chunk * ChunkSize,
		End:    (chunk + 1) * ChunkSize,
	}
}

// Bounds clamps the plan's range to a dataset of length size.
func (p Plan) Bounds(size int) (start, end int) {
	start, end = min(p.Start, size), min(p.End, size)
	return max(start, 0), max(end, 0)
}

func (p Plan) String() string {
	if p.Action != ActionIngest {
		return p.Action.String()
	}
	return fmt.Sprintf("ingest chunk %d [%d:%d)", p.Chunk, p.Start, p.End)
}
