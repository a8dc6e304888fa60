package domain

// Party identifies a ledger party (customer, supplier, broker) whose
// postings, outstanding entries and payments are tracked.
type Party struct {
	PartyID  string `json:"partyID"`  // Primary Key (e.g., UUID)
	Name     string `json:"name"`     // Display name
	Address  string `json:"address"`  // Nullable free text
	Contact  string `json:"contact"`  // Nullable phone/email
	IsActive bool   `json:"isActive"` // Soft delete flag; parties are never removed implicitly
	AuditFields
}
