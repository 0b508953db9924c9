// Package gcloud resolves facts about the current compute instance from the
// google metadata service.
package gcloud

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/compute/metadata"
	"github.com/pkg/errors"
)

// Metadata a single synchronous read against the instance metadata endpoint.
// no retries, no caching; every call is a fresh round trip and any failure
// is surfaced to the caller.
type Metadata interface {
	Get(ctx context.Context, suffix string) (string, error)
}

// NewGCE metadata client backed by the real metadata endpoint.
func NewGCE() GCE {
	return GCE{client: metadata.NewClient(nil)}
}

// GCE production implementation of Metadata.
type GCE struct {
	client *metadata.Client
}

func (t GCE) Get(ctx context.Context, suffix string) (s string, err error) {
	if s, err = t.client.GetWithContext(ctx, suffix); err != nil {
		return "", errors.Wrapf(err, "metadata lookup failed: %s", suffix)
	}

	return s, nil
}

// SelfIP primary ip of the given network interface.
func SelfIP(ctx context.Context, m Metadata, iface int) (string, error) {
	return m.Get(ctx, fmt.Sprintf("instance/network-interfaces/%d/ip", iface))
}

// SelfName instance name.
func SelfName(ctx context.Context, m Metadata) (string, error) {
	return m.Get(ctx, "instance/name")
}

// SelfZone placement zone of the instance. the endpoint returns a fully
// qualified path (projects/<num>/zones/<zone>); only the final segment is the zone.
func SelfZone(ctx context.Context, m Metadata) (zone string, err error) {
	if zone, err = m.Get(ctx, "instance/zone"); err != nil {
		return "", err
	}

	if zone = PathSuffix(zone, "/"); zone == "" {
		return "", errors.New("unable to extract zone name from metadata path")
	}

	return zone, nil
}

// ProjectID project the instance belongs to.
func ProjectID(ctx context.Context, m Metadata) (string, error) {
	return m.Get(ctx, "project/project-id")
}

// Attribute a custom instance metadata value supplied by the provisioning layer.
func Attribute(ctx context.Context, m Metadata, key string) (string, error) {
	return m.Get(ctx, "instance/attributes/"+key)
}

// PathSuffix returns the segment after the final separator, empty string otherwise.
func PathSuffix(s string, sep string) string {
	var (
		idx int
	)

	if idx = strings.LastIndex(s, sep); idx < 0 || idx > len(s)-1 {
		return ""
	}

	return s[idx+1:]
}
