package engine

// ============================================================================
// VIEWS — Zero-Copy Read-Only Access to the Resident Table
// ============================================================================
// Implementations:
//   Dataset  — the enriched table, built once at startup
//   SubView  — filtered subset (indices into parent, zero-copy)
//
// Incidents are handed out by value, so callers can never write back into the
// resident table. Views are safe to share between goroutines.
// ============================================================================

// View provides indexed, read-only access to incidents.
// The engine calls At in tight loops — keep implementations fast.
type View interface {
	Len() int
	At(index int) Incident
}

// ============================================================================
// DATASET — the resident table
// ============================================================================

// Dataset is the enriched incident table. It is immutable after NewDataset.
type Dataset struct {
	incidents []Incident
}

// NewDataset derives every incident once and takes ownership of the result.
// raw is not modified.
func NewDataset(raw []Incident) *Dataset {
	return &Dataset{incidents: Derive(raw)}
}

func (d *Dataset) Len() int { return len(d.incidents) }

func (d *Dataset) At(i int) Incident {
	if i < 0 || i >= len(d.incidents) {
		return Incident{}
	}
	return d.incidents[i]
}

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a subset of a parent View in parent order.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  View
	indices []int
}

func newSubView(parent View, indices []int) View {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) At(i int) Incident {
	if i < 0 || i >= len(v.indices) {
		return Incident{}
	}
	return v.parent.At(v.indices[i])
}

// Collect copies a view into a fresh slice.
func Collect(view View) []Incident {
	out := make([]Incident, view.Len())
	for i := range out {
		out[i] = view.At(i)
	}
	return out
}

// SliceView wraps already-derived incidents (e.g. test fixtures) without
// re-deriving them.
type SliceView []Incident

func (s SliceView) Len() int { return len(s) }

func (s SliceView) At(i int) Incident {
	if i < 0 || i >= len(s) {
		return Incident{}
	}
	return s[i]
}
