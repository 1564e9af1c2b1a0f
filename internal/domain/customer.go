package domain

type Membership string

const (
	MembershipBronze Membership = "B"
	MembershipSilver Membership = "S"
	MembershipGold   Membership = "G"
)

// Customer is provisioned outside this service; the order flow only reads it.
// UserID links the row to the authenticated principal.
type Customer struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	Membership Membership `json:"membership"`
}
