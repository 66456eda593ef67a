// internal/app/system/authz/roles.go
package authz

import "github.com/dalemusser/campaignhub/internal/app/system/permissions"

// Check is a predicate over resolved capabilities.
type Check func(permissions.Capabilities) bool

// Checks used by the project routes.
var (
	CanView           Check = func(c permissions.Capabilities) bool { return c.ViewProject }
	CanEditProject    Check = func(c permissions.Capabilities) bool { return c.EditProject }
	CanDeleteProject  Check = func(c permissions.Capabilities) bool { return c.DeleteProject }
	CanManageMembers  Check = func(c permissions.Capabilities) bool { return c.ManageMembers }
	CanInvite         Check = func(c permissions.Capabilities) bool { return c.InviteMembers }
	CanEditCampaigns  Check = func(c permissions.Capabilities) bool { return c.EditCampaigns }
	CanManageChannels Check = func(c permissions.Capabilities) bool { return c.ManageChannels }
	CanEditSettings   Check = func(c permissions.Capabilities) bool { return c.EditSettings }
)
