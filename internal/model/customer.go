package model

import "time"

type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "bronze"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
)

type Customer struct {
	BaseModel
	Versioned
	OrganizationID string      `db:"organization_id" json:"organization_id"`
	Name           string      `db:"name" json:"name"`
	Phone          *string     `db:"phone" json:"phone,omitempty"`
	Email          *string     `db:"email" json:"email,omitempty"`
	LoyaltyPoints  int64       `db:"loyalty_points" json:"loyalty_points"`
	LoyaltyTier    LoyaltyTier `db:"loyalty_tier" json:"loyalty_tier"`
}

type PrescriptionStatus string

const (
	PrescriptionActive    PrescriptionStatus = "active"
	PrescriptionFilled    PrescriptionStatus = "filled"
	PrescriptionExpired   PrescriptionStatus = "expired"
	PrescriptionCancelled PrescriptionStatus = "cancelled"
)

type Prescription struct {
	BaseModel
	OrganizationID   string             `db:"organization_id" json:"organization_id"`
	CustomerID       string             `db:"customer_id" json:"customer_id"`
	PrescriberName   string             `db:"prescriber_name" json:"prescriber_name"`
	Status           PrescriptionStatus `db:"status" json:"status"`
	RefillsRemaining int                `db:"refills_remaining" json:"refills_remaining"`
	ExpiresAt        *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
}

// Usable reports whether the prescription can still cover a dispense at now.
func (p *Prescription) Usable(now time.Time) bool {
	if p.Status != PrescriptionActive || p.RefillsRemaining <= 0 {
		return false
	}
	return p.ExpiresAt == nil || now.Before(*p.ExpiresAt)
}

// Fill consumes one refill.
func (p *Prescription) Fill() {
	p.RefillsRemaining--
	if p.RefillsRemaining <= 0 {
		p.RefillsRemaining = 0
		p.Status = PrescriptionFilled
	}
}
