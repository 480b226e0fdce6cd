package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role scopes what a tenant token may do
type Role string

const (
	// RoleStaff runs evaluations and reads results
	RoleStaff Role = "staff"
	// RoleAdmin additionally administers the tenant's policies
	RoleAdmin Role = "admin"
)

// Tenant is an isolated business account. All evaluations, policies and
// stored analyses are scoped to exactly one tenant. The staff and admin
// credentials are separate; a tenant without an admin hash has no
// admin login.
type Tenant struct {
	ID                string    `json:"id" bson:"_id,omitempty"`
	Slug              string    `json:"slug" bson:"slug"`
	Name              string    `json:"name" bson:"name"`
	PasswordHash      string    `json:"-" bson:"passwordHash"`
	AdminPasswordHash string    `json:"-" bson:"adminPasswordHash,omitempty"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
}

// LoginRequest is the tenant login payload
type LoginRequest struct {
	Slug     string `json:"slug"`
	Password string `json:"password"`
}

// LoginResponse carries the issued tenant token
type LoginResponse struct {
	Token    string `json:"token"`
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// TenantClaims are the JWT claims for a tenant-scoped token
type TenantClaims struct {
	TenantID string `json:"tenantId"`
	Slug     string `json:"slug"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
