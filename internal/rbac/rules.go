package rbac

// Roles the roster assigns.
const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"
)

// RolePermissions is the default policy. Students see published exams
// and their own submission; lecturers run the grading side; admin gets
// everything.
var RolePermissions = map[string][]string{
	RoleStudent: {
		"exam:view",
		"exam:access",
		"submission:create",
		"result:view-own",
	},
	RoleLecturer: {
		"exam:view",
		"exam:create",
		"exam:publish",
		"exam:schedule",
		"question:manage",
		"submission:view-all",
		"grading:write",
		"exam:finalize",
		"statistics:view",
		"audit:view",
		"users:bulk_upsert",
		"users:list",
	},
	RoleAdmin: {
		"*", // everything
	},
}
