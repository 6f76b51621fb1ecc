package authz

// Can reports whether role may exercise perm. RoleNone is never authorized.
func Can(role Role, perm Permission) bool {
	if role.IsNone() {
		return false
	}
	_, ok := grantIndex[perm][role]
	return ok
}

// CanAny reports whether role holds at least one of perms.
func CanAny(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if Can(role, p) {
			return true
		}
	}
	return false
}

// Granted lists the permissions held by role in display order.
func Granted(role Role) []Permission {
	if role.IsNone() {
		return []Permission{}
	}
	out := make([]Permission, 0, len(permissionOrder))
	for _, p := range permissionOrder {
		if Can(role, p) {
			out = append(out, p)
		}
	}
	return out
}

// DecisionObserver receives every gate decision. Metrics implement it.
type DecisionObserver interface {
	ObserveDecision(permission string, allowed bool)
}

// Gate evaluates decisions and reports them to an optional observer.
type Gate struct {
	Observer DecisionObserver
}

// Allow evaluates Can and records the decision.
func (g Gate) Allow(role Role, perm Permission) bool {
	allowed := Can(role, perm)
	if g.Observer != nil {
		g.Observer.ObserveDecision(perm.String(), allowed)
	}
	return allowed
}
