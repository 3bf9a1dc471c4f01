package domain

import "time"

// IdempotencyRecord maps a client-supplied key to the resource a previous
// identical request created. At most one active record exists per
// (ownerId, key, scope, resourceType) tuple.
type IdempotencyRecord struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Key          string    `json:"key"`
	Scope        string    `json:"scope"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Active reports whether the record has not yet expired.
func (r IdempotencyRecord) Active(now time.Time) bool {
	return r.ExpiresAt.After(now)
}

// Matches reports whether the record belongs to the given tuple.
func (r IdempotencyRecord) Matches(ownerID, key, scope, resourceType string) bool {
	return r.OwnerID == ownerID && r.Key == key && r.Scope == scope && r.ResourceType == resourceType
}
