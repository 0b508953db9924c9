// Package consulboot configures a consul agent on a google compute instance at boot:
// it resolves the instance identity from the metadata service, renders the agent
// configuration, and hands the agent process to systemd.
package consulboot

import "path/filepath"

const (
	// DefaultConfigFile name of the rendered agent configuration inside the config directory.
	DefaultConfigFile = "default.json"
	// DefaultUnitPath location of the rendered supervision unit.
	DefaultUnitPath = "/etc/systemd/system/consul.service"
	// DefaultRaftProtocol consensus protocol version used between server nodes.
	DefaultRaftProtocol = 3
	// DefaultClusterSizeKey custom metadata key holding the intended server cluster size.
	DefaultClusterSizeKey = "cluster-size"
	// AgentBinaryName the managed executable, resolved inside the bin directory.
	AgentBinaryName = "consul"
)

// DefaultLocation resolves a path relative to the directory holding the running
// executable; used for the config/data/log sibling directory defaults.
func DefaultLocation(bindir string, rel string) string {
	return filepath.Join(filepath.Dir(bindir), rel)
}
