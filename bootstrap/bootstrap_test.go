package bootstrap_test

import (
	"context"
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markyjackson-taulia/terraform-google-consul/bootstrap"
	"github.com/markyjackson-taulia/terraform-google-consul/gcloud"
	"github.com/markyjackson-taulia/terraform-google-consul/internal/systemx"
	"github.com/markyjackson-taulia/terraform-google-consul/systemd"
)

func metadataSet1() map[string]string {
	return map[string]string{
		"instance/network-interfaces/0/ip": "10.0.0.5",
		"instance/name":                    "node-1",
		"instance/zone":                    "projects/121238320500/zones/us-west1-a",
		"project/project-id":               "proj-9",
		"instance/attributes/cluster-size": "5",
	}
}

// newContext lays out a realistic install tree inside a temp directory:
// bin/consul executable plus config, data and log siblings.
func newContext(m *gcloud.Fixture, s *systemd.Fixture) bootstrap.Context {
	root := GinkgoT().TempDir()
	for _, dir := range []string{"bin", "config", "data", "log"} {
		ExpectWithOffset(1, os.Mkdir(filepath.Join(root, dir), 0755)).To(Succeed())
	}
	ExpectWithOffset(1, os.WriteFile(filepath.Join(root, "bin", "consul"), []byte("#!/bin/sh\n"), 0755)).To(Succeed())

	owner := systemx.CurrentUserOrDefault(user.User{Uid: "0", Gid: "0", Username: "root"}).Username

	return bootstrap.Context{
		Server:         true,
		ClusterSizeKey: "cluster-size",
		RaftProtocol:   3,
		ConfigDir:      filepath.Join(root, "config"),
		DataDir:        filepath.Join(root, "data"),
		LogDir:         filepath.Join(root, "log"),
		BinDir:         filepath.Join(root, "bin"),
		UnitPath:       filepath.Join(root, "consul.service"),
		User:           owner,
		Metadata:       m,
		Supervisor:     s,
	}
}

func configDocument(b bootstrap.Context) map[string]interface{} {
	raw, err := os.ReadFile(filepath.Join(b.ConfigDir, "default.json"))
	ExpectWithOffset(1, err).To(Succeed())
	doc := make(map[string]interface{})
	ExpectWithOffset(1, json.Unmarshal(raw, &doc)).To(Succeed())
	return doc
}

var _ = Describe("Run", func() {
	It("rejects contradictory roles before any lookup or side effect", func() {
		m := gcloud.NewFixture(metadataSet1())
		s := &systemd.Fixture{}
		b := newContext(m, s)
		b.Client = true

		Expect(bootstrap.Run(context.Background(), b)).To(MatchError(bootstrap.ErrInvalidRole))
		Expect(m.Lookups).To(BeEmpty())
		Expect(s.Applied).To(BeEmpty())
		Expect(filepath.Join(b.ConfigDir, "default.json")).ToNot(BeAnExistingFile())
	})

	It("rejects a missing role the same way", func() {
		m := gcloud.NewFixture(metadataSet1())
		s := &systemd.Fixture{}
		b := newContext(m, s)
		b.Server = false

		Expect(bootstrap.Run(context.Background(), b)).To(MatchError(bootstrap.ErrInvalidRole))
		Expect(m.Lookups).To(BeEmpty())
	})

	It("fails before any lookup when the agent binary is missing", func() {
		m := gcloud.NewFixture(metadataSet1())
		s := &systemd.Fixture{}
		b := newContext(m, s)
		Expect(os.Remove(filepath.Join(b.BinDir, "consul"))).To(Succeed())

		err := bootstrap.Run(context.Background(), b)
		Expect(err).To(MatchError(ContainSubstring("prerequisite missing")))
		Expect(m.Lookups).To(BeEmpty())
		Expect(s.Applied).To(BeEmpty())
	})

	It("configures a server with quorum but no discovery when the tag is absent", func() {
		m := gcloud.NewFixture(map[string]string{
			"instance/network-interfaces/0/ip": "10.0.0.5",
			"instance/name":                    "node-1",
			"instance/zone":                    "projects/121238320500/zones/us-west1-a",
			"project/project-id":               "proj-9",
			"instance/attributes/cluster-size": "3",
		})
		s := &systemd.Fixture{}
		b := newContext(m, s)

		Expect(bootstrap.Run(context.Background(), b)).To(Succeed())

		doc := configDocument(b)
		Expect(doc["bootstrap_expect"]).To(BeEquivalentTo(3))
		Expect(doc).ToNot(HaveKey("retry_join"))
		Expect(s.Applied).To(HaveLen(1))
	})

	It("performs no quorum lookup for a client", func() {
		m := gcloud.NewFixture(metadataSet1())
		s := &systemd.Fixture{}
		b := newContext(m, s)
		b.Server = false
		b.Client = true

		Expect(bootstrap.Run(context.Background(), b)).To(Succeed())

		// identity lookups only
		Expect(m.Lookups).To(HaveLen(4))
		Expect(m.Lookups).ToNot(ContainElement("instance/attributes/cluster-size"))

		doc := configDocument(b)
		Expect(doc["server"]).To(BeFalse())
		Expect(doc).ToNot(HaveKey("bootstrap_expect"))
	})

	It("renders the full server scenario", func() {
		m := gcloud.NewFixture(metadataSet1())
		s := &systemd.Fixture{}
		b := newContext(m, s)
		b.ClusterTagName = "consul-xyz"

		Expect(bootstrap.Run(context.Background(), b)).To(Succeed())

		doc := configDocument(b)
		Expect(doc["advertise_addr"]).To(Equal("10.0.0.5"))
		Expect(doc["bind_addr"]).To(Equal("10.0.0.5"))
		Expect(doc["bootstrap_expect"]).To(BeEquivalentTo(5))
		Expect(doc["datacenter"]).To(Equal("us-west1-a"))
		Expect(doc["node_name"]).To(Equal("node-1"))
		Expect(doc["server"]).To(BeTrue())
		Expect(doc["raft_protocol"]).To(BeEquivalentTo(3))
		Expect(doc["retry_join"]).To(ConsistOf("provider=gce project_name=proj-9 tag_value=consul-xyz"))

		unit, err := os.ReadFile(b.UnitPath)
		Expect(err).To(Succeed())
		Expect(string(unit)).To(ContainSubstring("ExecStart=" + filepath.Join(b.BinDir, "consul") + " agent -config-dir " + b.ConfigDir + " -data-dir " + b.DataDir))

		Expect(s.Applied).To(Equal([]systemd.Application{{UnitPath: b.UnitPath, Changed: true}}))
	})

	It("is idempotent across identical runs", func() {
		m := gcloud.NewFixture(metadataSet1())
		s := &systemd.Fixture{}
		b := newContext(m, s)
		b.ClusterTagName = "consul-xyz"

		Expect(bootstrap.Run(context.Background(), b)).To(Succeed())
		config1, err := os.ReadFile(filepath.Join(b.ConfigDir, "default.json"))
		Expect(err).To(Succeed())
		unit1, err := os.ReadFile(b.UnitPath)
		Expect(err).To(Succeed())

		Expect(bootstrap.Run(context.Background(), b)).To(Succeed())
		config2, err := os.ReadFile(filepath.Join(b.ConfigDir, "default.json"))
		Expect(err).To(Succeed())
		unit2, err := os.ReadFile(b.UnitPath)
		Expect(err).To(Succeed())

		Expect(config1).To(Equal(config2))
		Expect(unit1).To(Equal(unit2))

		// the unchanged second run causes no process churn.
		Expect(s.Applied).To(HaveLen(2))
		Expect(s.Applied[0].Changed).To(BeTrue())
		Expect(s.Applied[1].Changed).To(BeFalse())
	})

	It("leaves the configuration untouched when skipped but still applies the unit", func() {
		m := gcloud.NewFixture(metadataSet1())
		s := &systemd.Fixture{}
		b := newContext(m, s)
		b.SkipConsulConfig = true

		previous := []byte(`{"handmade": true}`)
		path := filepath.Join(b.ConfigDir, "default.json")
		Expect(os.WriteFile(path, previous, 0644)).To(Succeed())

		Expect(bootstrap.Run(context.Background(), b)).To(Succeed())

		current, err := os.ReadFile(path)
		Expect(err).To(Succeed())
		Expect(current).To(Equal(previous))

		Expect(b.UnitPath).To(BeAnExistingFile())
		Expect(s.Applied).To(HaveLen(1))

		// skipping the configuration also skips the metadata round trips.
		Expect(m.Lookups).To(BeEmpty())
	})

	It("merges extra settings from the overrides file", func() {
		m := gcloud.NewFixture(metadataSet1())
		s := &systemd.Fixture{}
		b := newContext(m, s)
		b.ExtraConfigPath = filepath.Join(GinkgoT().TempDir(), "extra.yml")
		Expect(os.WriteFile(b.ExtraConfigPath, []byte("log_level: DEBUG\n"), 0644)).To(Succeed())

		Expect(bootstrap.Run(context.Background(), b)).To(Succeed())
		Expect(configDocument(b)["log_level"]).To(Equal("DEBUG"))
	})

	It("surfaces a failed metadata lookup without writing anything", func() {
		m := gcloud.NewFixture(map[string]string{})
		s := &systemd.Fixture{}
		b := newContext(m, s)

		Expect(bootstrap.Run(context.Background(), b)).ToNot(Succeed())
		Expect(filepath.Join(b.ConfigDir, "default.json")).ToNot(BeAnExistingFile())
		Expect(s.Applied).To(BeEmpty())
	})

	It("surfaces supervisor failures", func() {
		m := gcloud.NewFixture(metadataSet1())
		s := &systemd.Fixture{Err: context.DeadlineExceeded}
		b := newContext(m, s)

		Expect(bootstrap.Run(context.Background(), b)).To(MatchError(context.DeadlineExceeded))
		// the configuration was already written when the apply failed.
		Expect(filepath.Join(b.ConfigDir, "default.json")).To(BeAnExistingFile())
	})
})
