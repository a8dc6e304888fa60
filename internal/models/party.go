package models

// Party is the database representation of a ledger party.
type Party struct {
	PartyID  string `json:"partyID"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
	IsActive bool   `json:"isActive"`
	AuditFields
}
