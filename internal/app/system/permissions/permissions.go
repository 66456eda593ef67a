// Package permissions maps a user's system-admin flag and project role to
// the set of actions they may perform.
//
// Rules:
//   - Any project role can view the project and its campaigns.
//   - Owners and system admins can edit/delete the project and manage,
//     invite and remove members.
//   - Owners, editors and system admins can create/edit/delete campaigns,
//     manage channels and edit project settings.
//   - System admins can additionally reach the admin dashboard, ban/unban
//     and delete users, and view/delete any project regardless of role.
//
// An empty role with no admin flag yields the all-false set.
package permissions

import "github.com/dalemusser/campaignhub/internal/domain/models"

// Capabilities is the resolved permission set.
type Capabilities struct {
	ViewProject   bool `json:"view_project"`
	ViewCampaigns bool `json:"view_campaigns"`

	EditProject   bool `json:"edit_project"`
	DeleteProject bool `json:"delete_project"`
	ManageMembers bool `json:"manage_members"`
	InviteMembers bool `json:"invite_members"`
	RemoveMembers bool `json:"remove_members"`

	CreateCampaigns bool `json:"create_campaigns"`
	EditCampaigns   bool `json:"edit_campaigns"`
	DeleteCampaigns bool `json:"delete_campaigns"`
	ManageChannels  bool `json:"manage_channels"`
	EditSettings    bool `json:"edit_settings"`

	AccessAdminDashboard bool `json:"access_admin_dashboard"`
	BanUsers             bool `json:"ban_users"`
	DeleteAnyUser        bool `json:"delete_any_user"`
	ViewAnyProject       bool `json:"view_any_project"`
	DeleteAnyProject     bool `json:"delete_any_project"`
}

// Resolve returns the capabilities for a user. role is "" when the user has
// no membership in the project.
func Resolve(isSystemAdmin bool, role string) Capabilities {
	isMember := models.IsProjectRole(role)
	isOwner := role == models.RoleOwner
	canWrite := isOwner || role == models.RoleEditor

	manage := isOwner || isSystemAdmin
	write := canWrite || isSystemAdmin
	view := isMember || isSystemAdmin

	return Capabilities{
		ViewProject:   view,
		ViewCampaigns: view,

		EditProject:   manage,
		DeleteProject: manage,
		ManageMembers: manage,
		InviteMembers: manage,
		RemoveMembers: manage,

		CreateCampaigns: write,
		EditCampaigns:   write,
		DeleteCampaigns: write,
		ManageChannels:  write,
		EditSettings:    write,

		AccessAdminDashboard: isSystemAdmin,
		BanUsers:             isSystemAdmin,
		DeleteAnyUser:        isSystemAdmin,
		ViewAnyProject:       isSystemAdmin,
		DeleteAnyProject:     isSystemAdmin,
	}
}

// CanWrite reports whether the capabilities allow changing planning data.
func (c Capabilities) CanWrite() bool {
	return c.CreateCampaigns
}

// CanManage reports whether the capabilities allow managing the project itself.
func (c Capabilities) CanManage() bool {
	return c.ManageMembers
}
