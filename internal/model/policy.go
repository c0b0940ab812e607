package model

// Operation names an action an administrator performs on another account.
type Operation string

const (
    // OpAssignRole: give an account the target role (create or update).
    OpAssignRole Operation = "assign_role"
    // OpModifyUser: edit an account whose current role is the target.
    OpModifyUser Operation = "modify_user"
    // OpToggleActive: enable or disable an account whose current role is the target.
    OpToggleActive Operation = "toggle_active"
)

var staffAndBelow = []Role{RoleStaff, RoleCoach, RolePlayer}

// policy maps actor role and operation to the target roles it may touch.
// Actors missing from the table may do nothing.
var policy = map[Role]map[Operation][]Role{
    RoleSuperAdmin: {
        OpAssignRole:   {RoleAdmin, RoleStaff, RoleCoach, RolePlayer},
        OpModifyUser:   Roles,
        OpToggleActive: Roles,
    },
    RoleAdmin: {
        OpAssignRole:   staffAndBelow,
        OpModifyUser:   staffAndBelow,
        OpToggleActive: staffAndBelow,
    },
}

// Allowed reports whether actor may perform op against target.
func Allowed(actor Role, op Operation, target Role) bool {
    for _, r := range policy[actor][op] {
        if r == target {
            return true
        }
    }
    return false
}

// AssignableRoles returns the roles actor may grant, in privilege order.
func AssignableRoles(actor Role) []Role {
    out := make([]Role, 0, 4)
    out = append(out, policy[actor][OpAssignRole]...)
    return out
}
