// Package sharkscope provides the filtering-and-aggregation engine behind the
// shark incident dashboard.
//
// Usage:
//
//	import "github.com/spektr-org/sharkscope/engine"
//
//	ds := engine.NewDataset(incidents)
//	dash := engine.Execute(ds, engine.FilterState{
//	    States:    []string{"New South Wales"},
//	    YearRange: &engine.Range{Lo: 2000, Hi: 2020},
//	}, engine.WithTopActivities(8))
//
// The engine takes the resident incident table and a FilterState (built by the
// UI controller on every interaction) and returns render-ready output: the
// filtered subset, named distributions, cross-tabulations and quick facts.
//
// Loading from CSV/GeoJSON is handled by the helpers package; the HTTP surface
// lives in the server package. All computation is local and pure.
package sharkscope
