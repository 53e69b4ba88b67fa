package access

func CapabilitiesFor(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{CapManageEditions, CapDeleteEditions, CapManageCategories}
	case RoleOperator:
		return []string{CapManageEditions, CapManageCategories}
	default:
		return []string{}
	}
}

// Can reports whether role grants capability.
func Can(role, capability string) bool {
	for _, c := range CapabilitiesFor(role) {
		if c == capability {
			return true
		}
	}
	return false
}
