package clustering

import (
	"context"
	"log"
	"strconv"

	"github.com/pkg/errors"
	compute "google.golang.org/api/compute/v1"

	"github.com/markyjackson-taulia/terraform-google-consul/gcloud"
)

// Siblings lists the internal IPs of the managed instance group the current
// instance was created by. purely diagnostic: lets an operator confirm tag
// based discovery will find peers before the agent starts.
func Siblings(ctx context.Context, m gcloud.Metadata) (results []string, err error) {
	var (
		c       *compute.Service
		project string
		zone    string
		group   string
		resp    *compute.InstanceGroupManagersListManagedInstancesResponse
	)

	if project, err = gcloud.ProjectID(ctx, m); err != nil {
		return results, err
	}

	if zone, err = gcloud.SelfZone(ctx, m); err != nil {
		return results, err
	}

	if group, err = gcloud.Attribute(ctx, m, "created-by"); err != nil {
		return results, err
	}

	if group = gcloud.PathSuffix(group, "/"); group == "" {
		return results, errors.New("unable to extract instance group name from created-by")
	}

	if c, err = compute.NewService(ctx); err != nil {
		return results, errors.WithStack(err)
	}

	if resp, err = c.InstanceGroupManagers.ListManagedInstances(project, zone, group).Context(ctx).Do(); err != nil {
		return results, errors.WithStack(err)
	}

	for _, inst := range resp.ManagedInstances {
		if ip := instanceIP(ctx, c, project, zone, inst); len(ip) > 0 {
			results = append(results, ip)
		}
	}

	return results, nil
}

func instanceIP(ctx context.Context, c *compute.Service, project, zone string, mi *compute.ManagedInstance) string {
	var (
		err      error
		instance *compute.Instance
	)

	id := strconv.FormatUint(mi.Id, 10)
	if instance, err = c.Instances.Get(project, zone, id).Context(ctx).Do(); err != nil {
		log.Println("failed to retrieve instance", id, err)
		return ""
	}

	// first interface carries the internal address.
	for _, n := range instance.NetworkInterfaces {
		return n.NetworkIP
	}

	return ""
}
