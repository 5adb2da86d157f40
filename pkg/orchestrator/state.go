package orchestrator

// State is the stage of the rebuild pipeline the orchestrator is in.
type State int

const (
	Idle State = iota
	Normalizing
	Expanding
	Splitting
	Caching
	Sorting
	Published
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Normalizing:
		return "normalizing"
	case Expanding:
		return "expanding"
	case Splitting:
		return "splitting"
	case Caching:
		return "caching"
	case Sorting:
		return "sorting"
	case Published:
		return "published"
	default:
		return "unknown"
	}
}
