package admission

// Role tags the caller's visibility level. It is computed once per request
// from the resolved membership set; everything downstream switches on the tag
// instead of re-checking sentinel ids.
type Role int

const (
	// RoleOrdinary sees applications addressed to one of its committees.
	RoleOrdinary Role = iota
	// RoleMainBoard sees everything except applications addressed solely to
	// the main board.
	RoleMainBoard
	// RoleElection sees everything, unredacted.
	RoleElection
)

// Sentinels carries the configured ids of the two special committees.
type Sentinels struct {
	ElectionCommittee int64
	MainBoard         int64
}

// Scope is the caller's visibility scope for one request.
type Scope struct {
	Role      Role
	Sentinels Sentinels
	// Committees is the caller's full membership set. The scope predicate for
	// RoleOrdinary is built from it; an empty set authorizes nothing.
	Committees []int64
}

// ScopeFor computes the caller's scope from its memberships. Election
// committee membership wins over main board when a caller holds both.
func ScopeFor(s Sentinels, memberships []int64) Scope {
	sc := Scope{Role: RoleOrdinary, Sentinels: s, Committees: memberships}
	for _, id := range memberships {
		switch id {
		case s.ElectionCommittee:
			sc.Role = RoleElection
			return sc
		case s.MainBoard:
			sc.Role = RoleMainBoard
		}
	}
	return sc
}

// IsMember reports whether the caller belongs to the given committee.
func (s Scope) IsMember(id int64) bool {
	for _, m := range s.Committees {
		if m == id {
			return true
		}
	}
	return false
}
