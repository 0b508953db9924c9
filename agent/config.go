// Package agent renders the consul agent configuration document.
package agent

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	consulboot "github.com/markyjackson-taulia/terraform-google-consul"
	"github.com/markyjackson-taulia/terraform-google-consul/clustering"
	"github.com/markyjackson-taulia/terraform-google-consul/gcloud"
)

// NewConfig creates the agent configuration with defaults applied.
func NewConfig(options ...ConfigOption) Config {
	config := Config{
		ClientAddr:   "0.0.0.0",
		UI:           true,
		RaftProtocol: consulboot.DefaultRaftProtocol,
	}

	for _, opt := range options {
		opt(&config)
	}

	return config
}

// ConfigOption - for overriding configurations.
type ConfigOption func(*Config)

// ConfigOptionIdentity fills the fields derived from the instance identity.
func ConfigOptionIdentity(id gcloud.Identity) ConfigOption {
	return func(c *Config) {
		c.AdvertiseAddr = id.IP
		c.BindAddr = id.IP
		c.Datacenter = id.Zone
		c.NodeName = id.Name
	}
}

// ConfigOptionRole marks the node as a consensus participant or plain client.
func ConfigOptionRole(server bool) ConfigOption {
	return func(c *Config) {
		c.Server = server
	}
}

// ConfigOptionQuorum embeds the bootstrap expectation when enabled.
func ConfigOptionQuorum(d clustering.QuorumDirective) ConfigOption {
	return func(c *Config) {
		if !d.Enabled {
			return
		}

		c.BootstrapExpect = d.ExpectedSize
	}
}

// ConfigOptionDiscovery embeds the retry join expression when enabled.
func ConfigOptionDiscovery(d clustering.DiscoveryDirective) ConfigOption {
	return func(c *Config) {
		if !d.Enabled {
			return
		}

		c.RetryJoin = []string{d.RetryJoin()}
	}
}

// ConfigOptionRaftProtocol overrides the consensus protocol version.
func ConfigOptionRaftProtocol(version int) ConfigOption {
	return func(c *Config) {
		c.RaftProtocol = version
	}
}

// ConfigOptionExtra merges operator supplied settings on top of the generated
// document. extra keys win.
func ConfigOptionExtra(extra map[string]interface{}) ConfigOption {
	return func(c *Config) {
		c.extra = extra
	}
}

// Config the agent configuration document. conditional fields are omitted
// entirely when unset, never rendered as null placeholders.
type Config struct {
	AdvertiseAddr   string          `json:"advertise_addr"`
	BindAddr        string          `json:"bind_addr"`
	ClientAddr      string          `json:"client_addr"`
	Datacenter      string          `json:"datacenter"`
	NodeName        string          `json:"node_name"`
	Server          bool            `json:"server"`
	UI              bool            `json:"ui"`
	RaftProtocol    int             `json:"raft_protocol"`
	BootstrapExpect json.RawMessage `json:"bootstrap_expect,omitempty"`
	RetryJoin       []string        `json:"retry_join,omitempty"`

	extra map[string]interface{}
}

// EncodeJSON serializes the document, applying any extra settings. key order
// is deterministic so repeated runs produce byte identical output.
func (t Config) EncodeJSON() (raw []byte, err error) {
	if raw, err = json.Marshal(t); err != nil {
		return nil, errors.WithStack(err)
	}

	if len(t.extra) == 0 {
		return indent(raw)
	}

	merged := make(map[string]interface{})
	if err = json.Unmarshal(raw, &merged); err != nil {
		return nil, errors.WithStack(err)
	}

	for k, v := range t.extra {
		merged[k] = sanitize(v)
	}

	if raw, err = json.Marshal(merged); err != nil {
		return nil, errors.WithStack(err)
	}

	return indent(raw)
}

func indent(raw []byte) (out []byte, err error) {
	var (
		tmp interface{}
	)

	if err = json.Unmarshal(raw, &tmp); err != nil {
		return nil, errors.WithStack(err)
	}

	if out, err = json.MarshalIndent(tmp, "", "  "); err != nil {
		return nil, errors.WithStack(err)
	}

	return append(out, '\n'), nil
}

// sanitize converts yaml decoded values into json encodable equivalents.
func sanitize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = sanitize(val)
		}
		return m
	case []interface{}:
		for i, val := range x {
			x[i] = sanitize(val)
		}
		return x
	default:
		return v
	}
}
