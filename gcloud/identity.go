package gcloud

import "context"

// Identity facts about the current instance; resolved once per run,
// immutable afterwards, never persisted.
type Identity struct {
	IP      string
	Name    string
	Zone    string
	Project string
}

// ResolveIdentity performs the identity lookups against the metadata service.
// the first failure aborts resolution.
func ResolveIdentity(ctx context.Context, m Metadata, iface int) (id Identity, err error) {
	if id.IP, err = SelfIP(ctx, m, iface); err != nil {
		return id, err
	}

	if id.Name, err = SelfName(ctx, m); err != nil {
		return id, err
	}

	if id.Zone, err = SelfZone(ctx, m); err != nil {
		return id, err
	}

	if id.Project, err = ProjectID(ctx, m); err != nil {
		return id, err
	}

	return id, nil
}
