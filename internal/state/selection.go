package state

import "github.com/five82/typetune/internal/protocol"

// SelectionKind is the panel's view of the host selection.
type SelectionKind int

const (
	// NoSelection: nothing selected, or nothing eligible at all.
	NoSelection SelectionKind = iota
	// EmptySelection: a selection exists but holds no eligible text layers.
	EmptySelection
	// HasResults: at least one result is available.
	HasResults
)

func (k SelectionKind) String() string {
	switch k {
	case EmptySelection:
		return "empty"
	case HasResults:
		return "results"
	default:
		return "none"
	}
}

// Selection is an immutable result set. A new calculation replaces it whole.
type Selection struct {
	Kind    SelectionKind
	Results []protocol.ResultEntry
}

// Primary returns the first result, which drives export and the summary card.
func (s Selection) Primary() (protocol.ResultEntry, bool) {
	if s.Kind != HasResults || len(s.Results) == 0 {
		return protocol.ResultEntry{}, false
	}
	return s.Results[0], true
}

func (s Selection) primaryID() string {
	p, ok := s.Primary()
	if !ok {
		return ""
	}
	return p.NodeID
}

func cloneResults(results []protocol.ResultEntry) []protocol.ResultEntry {
	if len(results) == 0 {
		return nil
	}
	dup := make([]protocol.ResultEntry, len(results))
	copy(dup, results)
	return dup
}
