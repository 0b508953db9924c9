package clustering

import (
	"fmt"
	"log"
)

// DiscoveryDirective automatic peer discovery via shared instance tags.
type DiscoveryDirective struct {
	Enabled  bool
	Provider string
	Project  string
	TagValue string
}

// RetryJoin the go-discover expression consul uses to locate peers.
func (t DiscoveryDirective) RetryJoin() string {
	return fmt.Sprintf("provider=%s project_name=%s tag_value=%s", t.Provider, t.Project, t.TagValue)
}

// ResolveDiscovery determines the peer discovery directive. an empty tag name
// disables discovery entirely; the node will run standalone or be joined manually.
func ResolveDiscovery(tag string, project string) DiscoveryDirective {
	if tag == "" {
		log.Println("WARN no cluster tag name provided, auto discovery disabled; the agent must be joined to a cluster manually")
		return DiscoveryDirective{}
	}

	return DiscoveryDirective{
		Enabled:  true,
		Provider: "gce",
		Project:  project,
		TagValue: tag,
	}
}
