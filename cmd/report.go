package cmd

import "context"

// ReportCmd writes the report artifacts on demand
type ReportCmd struct {
	YAML   bool `name:"yaml" help:"Also write summary.yaml" default:"true" negatable:""`
	Tables bool `help:"Print the projections as tables"`
}

func (r *ReportCmd) Run(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return newReporter(store, r.YAML, r.Tables).Report(ctx)
}
