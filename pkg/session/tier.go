package session

// Tier selects one of the two storage backends of a Manager.
type Tier int

const (
	// Ephemeral storage lives as long as the browsing context (process).
	Ephemeral Tier = iota
	// Durable storage survives restarts and is shared between contexts.
	Durable
)

func (t Tier) String() string {
	if t == Durable {
		return "durable"
	}
	return "ephemeral"
}

// ChooseTier returns the tier a session is kept in for the given remember-me choice.
func ChooseTier(rememberMe bool) Tier {
	if rememberMe {
		return Durable
	}
	return Ephemeral
}

// writeTiers lists the tiers a write goes to. A remembered session is kept
// in Durable and mirrored into Ephemeral so both tiers hold it.
func writeTiers(rememberMe bool) []Tier {
	if rememberMe {
		return []Tier{Durable, Ephemeral}
	}
	return []Tier{Ephemeral}
}
