package model

// Role groups privileges
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleStaff       = "STAFF"
)

var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full access, including user management",
	},
	{
		Code:        RoleStaff,
		Name:        "Staff",
		Description: "Day to day inventory, product and order work",
	},
}

// RolePrivilegeCodes lists what a default role is granted on seed.
func RolePrivilegeCodes(roleCode string) []string {
	codes := make([]string, 0, len(DefaultPrivileges))
	for _, p := range DefaultPrivileges {
		if roleCode == RoleMasterAdmin || (roleCode == RoleStaff && !IsUserManagement(p.Code) && p.Code != PrivUserView) {
			codes = append(codes, p.Code)
		}
	}
	return codes
}
