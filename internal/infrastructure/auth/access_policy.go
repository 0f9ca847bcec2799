package auth

import (
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
)

// Role names recognized by the access policy. The identity service owns the
// role catalog; the pricing service only matches on these well-known names.
const (
	RoleAdmin        = "admin"
	RoleSalesManager = "sales:manager"
)

// RoleAccessPolicy implements pricing.OrderAccessPolicy from the actor's
// roles and territory claims. Managers and admins see every order in their
// tenant; salespeople see their own orders and orders in their territories.
type RoleAccessPolicy struct {
	managerRoles []string
}

// NewRoleAccessPolicy creates a policy with the default manager roles
func NewRoleAccessPolicy() *RoleAccessPolicy {
	return &RoleAccessPolicy{
		managerRoles: []string{RoleAdmin, RoleSalesManager},
	}
}

// NewRoleAccessPolicyWithManagerRoles creates a policy with custom manager roles
func NewRoleAccessPolicyWithManagerRoles(managerRoles []string) *RoleAccessPolicy {
	return &RoleAccessPolicy{managerRoles: managerRoles}
}

// CanAccessOrder reports whether the actor may read the order
func (p *RoleAccessPolicy) CanAccessOrder(actor pricing.Actor, order pricing.OrderRef) bool {
	if actor.TenantID != order.TenantID {
		return false
	}
	if p.IsManager(actor) {
		return true
	}
	if order.SalespersonID != nil && *order.SalespersonID == actor.UserID {
		return true
	}
	if order.TerritoryID != nil {
		for _, tid := range actor.TerritoryIDs {
			if tid == *order.TerritoryID {
				return true
			}
		}
	}
	return false
}

// CanModifyOrder reports whether the actor may change the order.
// Territory visibility grants reads only, never writes.
func (p *RoleAccessPolicy) CanModifyOrder(actor pricing.Actor, order pricing.OrderRef) bool {
	if actor.TenantID != order.TenantID {
		return false
	}
	if p.IsManager(actor) {
		return true
	}
	return order.SalespersonID != nil && *order.SalespersonID == actor.UserID
}

// IsManager reports whether the actor holds a manager role
func (p *RoleAccessPolicy) IsManager(actor pricing.Actor) bool {
	for _, role := range actor.Roles {
		for _, manager := range p.managerRoles {
			if role == manager {
				return true
			}
		}
	}
	return false
}

// TerritoryIDs returns the territories the actor may operate in
func (p *RoleAccessPolicy) TerritoryIDs(actor pricing.Actor) []uuid.UUID {
	return actor.TerritoryIDs
}

// ActorFromClaims builds a domain actor from verified JWT claims
func ActorFromClaims(claims *Claims) (pricing.Actor, error) {
	tenantID, err := claims.GetTenantUUID()
	if err != nil {
		return pricing.Actor{}, err
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return pricing.Actor{}, err
	}
	return pricing.Actor{
		UserID:       userID,
		TenantID:     tenantID,
		Roles:        claims.Roles,
		TerritoryIDs: claims.GetTerritoryUUIDs(),
	}, nil
}

var _ pricing.OrderAccessPolicy = (*RoleAccessPolicy)(nil)
