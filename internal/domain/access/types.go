package access

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

const (
	CapManageEditions   = "editions.manage"
	CapDeleteEditions   = "editions.delete"
	CapManageCategories = "categories.manage"
)

// Actor is the authenticated caller of an admin operation.
type Actor struct {
	UserID uint
	Role   string
}
