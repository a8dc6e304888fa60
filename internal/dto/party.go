package dto

import (
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
)

// CreatePartyRequest defines the data needed to create a new party.
type CreatePartyRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"` // Optional
	Contact string `json:"contact"` // Optional
}

// UpdatePartyRequest defines the data allowed for updating a party.
// Pointers distinguish zero-value updates from fields not provided.
type UpdatePartyRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Contact *string `json:"contact"`
}

// ListPartiesParams holds pagination parameters for listing parties.
type ListPartiesParams struct {
	Limit  int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}

// ListPartiesResponse defines the response for listing parties.
type ListPartiesResponse struct {
	Parties []PartyResponse `json:"parties"`
}

// PartyResponse defines the data returned for a party.
type PartyResponse struct {
	PartyID       string    `json:"partyID"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Contact       string    `json:"contact"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToPartyResponse converts a domain.Party to PartyResponse DTO
func ToPartyResponse(p *domain.Party) PartyResponse {
	return PartyResponse{
		PartyID:       p.PartyID,
		Name:          p.Name,
		Address:       p.Address,
		Contact:       p.Contact,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
		LastUpdatedAt: p.LastUpdatedAt,
		LastUpdatedBy: p.LastUpdatedBy,
	}
}
