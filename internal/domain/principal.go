package domain

// Principal is the resolved identity of an authenticated request.
type Principal struct {
	ID         string `json:"id"`
	ScreenName string `json:"screen_name"`
}

// Owned is implemented by every resource that records an owner.
type Owned interface {
	OwnerID() string
}
