package types

// CompState marks whether a per-node quantity has been evaluated by the
// worker that owns the table it lives in.
type CompState uint8

const (
	NotComputed CompState = iota
	Computed
)

func (cs CompState) String() string {
	switch cs {
	case NotComputed:
		return "NotComputed"
	case Computed:
		return "Computed"
	default:
		return "Unknown"
	}
}
