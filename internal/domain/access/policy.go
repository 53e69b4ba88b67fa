package access

type Policy struct {
	Role         string
	Capabilities []string
}

func ComputePolicy(a Actor) Policy {
	return Policy{
		Role:         a.Role,
		Capabilities: CapabilitiesFor(a.Role),
	}
}

func (p Policy) Allows(capability string) bool {
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
