package policy

// Policy holds the configurable part of the rule set. The built-in rules
// always apply; configuration can only add to them.
type Policy struct {
	// ExtraNetworkCommands are executable names denied in addition to the
	// built-in network deny-list.
	ExtraNetworkCommands []string `mapstructure:"extra_network_commands"`
}

// DefaultPolicy returns the built-in rule set with no additions.
func DefaultPolicy() *Policy {
	return &Policy{
		ExtraNetworkCommands: []string{},
	}
}
