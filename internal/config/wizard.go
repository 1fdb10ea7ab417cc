package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Network zones that support vSwitch subnets.
var networkZones = []string{"eu-central", "us-east", "us-west", "ap-southeast"}

// WizardResult holds the answers collected by RunWizard.
type WizardResult struct {
	Name     string
	Endpoint string
	Zone     string
}

// Fields maps the answers to descriptor keys, skipping empty answers.
func (r *WizardResult) Fields() map[string]any {
	fields := map[string]any{}
	if r.Name != "" {
		fields[FieldClusterName] = r.Name
	}
	if r.Endpoint != "" {
		fields[FieldEndpoint] = r.Endpoint
	}
	if r.Zone != "" {
		fields[FieldZone] = r.Zone
	}
	return fields
}

// RunWizard asks for the cluster identity, pre-filled from defaults.
func RunWizard(ctx context.Context, defaults WizardResult) (*WizardResult, error) {
	result := defaults
	if result.Zone == "" {
		result.Zone = DefaultZone
	}

	zoneOptions := make([]huh.Option[string], 0, len(networkZones))
	for _, z := range networkZones {
		zoneOptions = append(zoneOptions, huh.NewOption(z, z))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster name").
				Description("Used for resource names and labels (DNS-safe, lowercase)").
				Placeholder("my-cluster").
				Value(&result.Name).
				Validate(validateClusterName),
			huh.NewInput().
				Title("Control plane endpoint").
				Description("Kubernetes API URL, usually the load balancer private address").
				Placeholder("https://10.0.1.10:6443").
				Value(&result.Endpoint).
				Validate(validateEndpoint),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Network zone").
				Description("Hetzner Cloud network zone of the vSwitch subnet").
				Options(zoneOptions...).
				Value(&result.Zone),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}
	return &result, nil
}

func validateClusterName(s string) error {
	if s == "" {
		return fmt.Errorf("cluster name is required")
	}
	if errs := validation.IsDNS1123Label(s); len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEndpoint(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("endpoint must be an https URL")
	}
	return nil
}
