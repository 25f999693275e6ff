package model

// Mode selects which part of the harmonized graph is returned.
type Mode string

const (
	ModeAll     Mode = "all"     // every delta, or every node when nothing changed
	ModeCurrent Mode = "current" // removed systems only
	ModeFuture  Mode = "future"  // added systems only
)

// ParseMode maps a request string to a Mode. Empty means ModeAll.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case "", ModeAll:
		return ModeAll, true
	case ModeCurrent:
		return ModeCurrent, true
	case ModeFuture:
		return ModeFuture, true
	}
	return "", false
}

type HarmonizedGraph struct {
	Nodes []HarmonizedSystem `json:"nodes" yaml:"nodes"`
	Edges []Edge             `json:"edges" yaml:"edges"`
}

// Node returns the system with the given id.
func (g *HarmonizedGraph) Node(id string) (HarmonizedSystem, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return HarmonizedSystem{}, false
}

// GraphStats summarizes a graph for dashboards and telemetry.
type GraphStats struct {
	Systems      int `json:"systems"`
	Integrations int `json:"integrations"`
	Added        int `json:"added"`
	Removed      int `json:"removed"`
	Modified     int `json:"modified"`
	Unchanged    int `json:"unchanged"`
}

func (g *HarmonizedGraph) Stats() GraphStats {
	s := GraphStats{Systems: len(g.Nodes), Integrations: len(g.Edges)}
	for _, n := range g.Nodes {
		switch n.State {
		case StateAdded:
			s.Added++
		case StateRemoved:
			s.Removed++
		case StateModified:
			s.Modified++
		default:
			s.Unchanged++
		}
	}
	return s
}
