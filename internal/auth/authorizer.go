package auth

import (
	"context"
	"slices"

	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
)

const RoleOwner = "owner"

// BranchAuthorizer decides whether the acting principal may operate on a branch.
type BranchAuthorizer interface {
	AuthorizeBranch(ctx context.Context, organizationID, branchID string) error
}

// PrincipalAuthorizer trusts the branch list the gateway put on the principal. Owners may act on
// every branch of their organization.
type PrincipalAuthorizer struct{}

func NewPrincipalAuthorizer() *PrincipalAuthorizer {
	return &PrincipalAuthorizer{}
}

func (PrincipalAuthorizer) AuthorizeBranch(ctx context.Context, organizationID, branchID string) error {
	p, ok := FromContext(ctx)
	if !ok {
		return apperr.Forbidden("no principal in request")
	}
	if p.OrganizationID != organizationID {
		return apperr.Forbidden("branch %s belongs to another organization", branchID)
	}
	if p.Role == RoleOwner || slices.Contains(p.BranchIDs, branchID) {
		return nil
	}
	return apperr.Forbidden("no access to branch %s", branchID)
}

// AllowAll is used by internal callers such as the Kafka listener, which act as the system.
type AllowAll struct{}

func (AllowAll) AuthorizeBranch(context.Context, string, string) error { return nil }
