package search

// Kind selects the predicate applied to each message.
type Kind string

const (
	// KindAllBut matches messages whose text is not exactly the argument.
	KindAllBut Kind = "allbut"
	// KindExact matches messages containing the argument.
	KindExact Kind = "exact"
	// KindAnd matches messages containing every comma-separated term.
	KindAnd Kind = "and"
	// KindOr matches messages containing at least one comma-separated term.
	KindOr Kind = "or"
)

// AllKinds returns all valid search kinds
func AllKinds() []Kind {
	return []Kind{
		KindAllBut,
		KindAnd,
		KindExact,
		KindOr,
	}
}

// IsValid checks if the kind is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindAllBut, KindExact, KindAnd, KindOr:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a command keyword into a Kind
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	if !k.IsValid() {
		return "", false
	}
	return k, true
}
