package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"submission:create",
		"submission:view-own",
		"submission:reflect",
		"submission:rate",
		"user:change_password",
	},
	"teacher": {
		"submission:view-own",
		"submission:view-all",
		"submission:grade",
		"submission:export",
		"users:list",
		"users:bulk_upsert",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
