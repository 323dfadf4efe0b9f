package auth

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is who a live subscriber is.
type Identity struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanSee reports whether events owned by ownerID are visible to i. An empty
// ownerID marks an event that belongs to nobody in particular.
func (i Identity) CanSee(ownerID string) bool {
	return i.IsAdmin() || ownerID == "" || i.UserID == ownerID
}
