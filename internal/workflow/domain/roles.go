package domain

// Action is a capability a role may exercise against the workflow.
type Action string

const (
	ActionBrowseProjects     Action = "browse_projects"
	ActionSubmitBrief        Action = "submit_brief"
	ActionViewStage1Results  Action = "view_stage1_results"
	ActionViewProjectStatus  Action = "view_project_status"
	ActionViewAssignedBrief  Action = "view_assigned_brief"
	ActionSubmitContent      Action = "submit_content"
	ActionViewContentHistory Action = "view_content_history"
)

var rolePermissions = map[Role]map[Action]bool{
	RoleBrandManager: {
		ActionBrowseProjects:    true,
		ActionSubmitBrief:       true,
		ActionViewStage1Results: true,
		ActionViewProjectStatus: true,
	},
	RoleContentWriter: {
		ActionViewAssignedBrief:  true,
		ActionViewStage1Results:  true,
		ActionSubmitContent:      true,
		ActionViewContentHistory: true,
	},
}

// IsAllowed reports whether role may perform action. It is a pure predicate
// consulted before every mutating call.
func IsAllowed(role Role, action Action) bool {
	return rolePermissions[role][action]
}
