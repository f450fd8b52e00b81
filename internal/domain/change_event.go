package domain

import "time"

type EntityType string

const (
	EntityCompany EntityType = "company"
	EntitySale    EntityType = "sale"
)

type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

// ChangeEvent describes a committed write. It carries the tenant identifier
// rather than a context so consumers must re-enter the tenant themselves.
type ChangeEvent struct {
	TenantIdentifier string     `json:"tenant_identifier"`
	Entity           EntityType `json:"entity"`
	Action           ActionType `json:"action"`
	EntityID         string     `json:"entity_id"`
	OccurredAt       time.Time  `json:"occurred_at"`
}
