// Package clustering decides how the consul agent bootstraps and discovers
// its cluster from the role flags and instance metadata.
package clustering

import (
	"context"
	"encoding/json"

	"github.com/markyjackson-taulia/terraform-google-consul/gcloud"
)

// QuorumDirective bootstrap expectation for server nodes; absent for clients.
type QuorumDirective struct {
	Enabled bool
	// ExpectedSize raw custom metadata value carried verbatim into the rendered
	// configuration. the provisioning layer owns its correctness.
	ExpectedSize json.RawMessage
}

// ResolveQuorum determines the bootstrap-expect directive for the node.
// clients resolve without any metadata lookup; servers perform exactly one
// lookup for the cluster size key.
func ResolveQuorum(ctx context.Context, m gcloud.Metadata, server bool, sizeKey string) (d QuorumDirective, err error) {
	var (
		size string
	)

	if !server {
		return QuorumDirective{}, nil
	}

	if size, err = gcloud.Attribute(ctx, m, sizeKey); err != nil {
		return d, err
	}

	return QuorumDirective{Enabled: true, ExpectedSize: json.RawMessage(size)}, nil
}
