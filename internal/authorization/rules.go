// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"github.com/canonical/inventory-identity/internal/types"
)

// tenantGrants lists what each tenant bound role may do inside its own tenant.
// root-admin is absent, it is allowed everything before the table is consulted.
var tenantGrants = map[types.Role][]types.Action{
	types.RoleTenantAdmin: {
		types.ActionManageUsers,
		types.ActionManageInventory,
		types.ActionViewReports,
		types.ActionViewAuditLogs,
		types.ActionManageTenantSettings,
	},
	types.RoleOperator: {
		types.ActionManageInventory,
		types.ActionViewReports,
	},
	types.RoleViewer: {
		types.ActionViewReports,
	},
}

// Can is the authorization decision. Rules are evaluated in order, first match wins,
// anything unmatched is denied.
func Can(scope *types.Scope, action types.Action, resourceTenant string) bool {
	if scope == nil || scope.Principal == nil {
		return false
	}

	role := scope.Principal.Role
	if role == types.RoleRootAdmin {
		return true
	}

	grants, ok := tenantGrants[role]
	if !ok {
		return false
	}

	if scope.TenantID == "" || resourceTenant != scope.TenantID {
		return false
	}

	for _, a := range grants {
		if a == action {
			return true
		}
	}

	return false
}

// RequiredRoles lists the roles that may perform action, used to explain denials.
func RequiredRoles(action types.Action) []types.Role {
	roles := []types.Role{types.RoleRootAdmin}

	for _, r := range []types.Role{types.RoleTenantAdmin, types.RoleOperator, types.RoleViewer} {
		for _, a := range tenantGrants[r] {
			if a == action {
				roles = append(roles, r)
				break
			}
		}
	}

	return roles
}

// CanAssignRole is the escalation rule applied where principals are created or
// modified: only root-admin hands out admin roles, tenant-admin may hand out
// operator and viewer inside its own tenant.
func CanAssignRole(scope *types.Scope, role types.Role, targetTenant string) bool {
	if scope == nil || scope.Principal == nil || !role.Valid() {
		return false
	}

	switch scope.Principal.Role {
	case types.RoleRootAdmin:
		return true
	case types.RoleTenantAdmin:
		return (role == types.RoleOperator || role == types.RoleViewer) &&
			scope.TenantID != "" && targetTenant == scope.TenantID
	}

	return false
}
