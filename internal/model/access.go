package model

// Access is the caller's identity and capabilities for one request.
//
// Middleware builds it from verified token claims and handlers pass it to
// services explicitly. Services never reach into ambient request state to
// find out who is calling.
type Access struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Roles    []Role `json:"roles,omitempty"`
}

// Anonymous returns the access of an unauthenticated caller
func Anonymous() Access {
	return Access{}
}

// IsAuthenticated reports whether the caller is logged in
func (a Access) IsAuthenticated() bool {
	return a.UserID != ""
}

// IsAdmin reports whether the caller holds the admin role
func (a Access) IsAdmin() bool {
	return a.hasRole(RoleAdmin)
}

// CanManageBoardGames reports whether the caller may manage inventory and reservations
func (a Access) CanManageBoardGames() bool {
	return a.hasRole(RoleBoardGamesManager) || a.IsAdmin()
}

// CanManageStates reports whether the caller may manage the opening schedule
func (a Access) CanManageStates() bool {
	return a.hasRole(RoleStatesManager) || a.IsAdmin()
}

// CanManageEvents reports whether the caller may manage club events
func (a Access) CanManageEvents() bool {
	return a.hasRole(RoleEventsManager) || a.IsAdmin()
}

// SameUser reports whether the caller is the given user
func (a Access) SameUser(userID string) bool {
	return a.IsAuthenticated() && a.UserID == userID
}

func (a Access) hasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
