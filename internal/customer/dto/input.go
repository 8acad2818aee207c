package dto

type SyncCustomerInput struct {
	OrganizationID string
	LocalID        string
	ClientVersion  int64
	Name           string
	Phone          *string
	Email          *string
}
