package pgdelta

import "context"

// Script is a convenience function that snapshots both databases and
// returns the rendered migration script with default rendering and secret
// masking applied.
func Script(ctx context.Context, mainDSN, branchDSN string) (string, error) {
	p, err := PlanDatabases(ctx, mainDSN, branchDSN)
	if err != nil {
		return "", err
	}
	return p.Script(DefaultRenderOptions(), MaskSecrets())
}

// Steps is a convenience function that snapshots both databases and
// returns the ordered steps with rendered SQL, secrets masked.
func Steps(ctx context.Context, mainDSN, branchDSN string) ([]Step, error) {
	p, err := PlanDatabases(ctx, mainDSN, branchDSN)
	if err != nil {
		return nil, err
	}
	return p.Steps(DefaultRenderOptions(), MaskSecrets())
}
