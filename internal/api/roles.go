package api

import (
	"context"
	"strings"

	"unigate/internal/registry"
)

// userRoles resolves a user's roles from the ledger. The contract owner is
// the Administrator; everyone else gets whatever University.getUser reports
// for their active wallet.
func (s *Server) userRoles(ctx context.Context, userID string) ([]registry.Role, error) {
	w, err := s.Store.ActiveWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	owner, err := s.Registry.Owner(ctx)
	if err != nil {
		return nil, err
	}

	roles := []registry.Role{}
	if strings.EqualFold(w.Address, owner) {
		roles = append(roles, registry.RoleAdministrator)
	}

	onchain, err := s.Registry.User(ctx, w.Address)
	if err != nil {
		return nil, err
	}
	for _, role := range onchain.Roles {
		if !registry.HasRole(roles, role) {
			roles = append(roles, role)
		}
	}
	return roles, nil
}
