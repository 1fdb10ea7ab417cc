package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ListSnapshots returns all snapshot images matching the label selector.
func (c *RealClient) ListSnapshots(ctx context.Context, selector string) ([]*hcloud.Image, error) {
	images, err := c.client.Image.AllWithOpts(ctx, hcloud.ImageListOpts{
		Type:     []hcloud.ImageType{hcloud.ImageTypeSnapshot},
		ListOpts: hcloud.ListOpts{LabelSelector: selector},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}
