package main

import (
	"context"
	"fmt"

	"github.com/markyjackson-taulia/terraform-google-consul/clustering"
	"github.com/markyjackson-taulia/terraform-google-consul/gcloud"
)

type cmdPeers struct{}

func (t cmdPeers) Run(ctx *global) (err error) {
	var (
		peers []string
	)

	if peers, err = clustering.Siblings(context.Background(), gcloud.NewGCE()); err != nil {
		return err
	}

	for _, p := range peers {
		fmt.Println(p)
	}

	return nil
}
