package cmd

import (
	"errors"
	"fmt"
	"os"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Policy is the business configuration of a deployment.
type Policy struct {
	GraceDays      int
	Profile        order.Profile
	TaxRatePct     decimal.Decimal
	PricingPolicy  services.PricingPolicy
	OverdueEnabled bool
}

// policyFile mirrors the YAML document. Missing keys keep their defaults.
//
//	grace_days: 1
//	profile: full
//	tax_rate_pct: "16"
//	min_charge_ratio: "0.5"
//	late_penalty_multiplier: "1.5"
//	overdue_scan: true
type policyFile struct {
	GraceDays             *int             `yaml:"grace_days"`
	Profile               *string          `yaml:"profile"`
	TaxRatePct            *decimal.Decimal `yaml:"tax_rate_pct"`
	MinChargeRatio        *decimal.Decimal `yaml:"min_charge_ratio"`
	LatePenaltyMultiplier *decimal.Decimal `yaml:"late_penalty_multiplier"`
	OverdueScan           *bool            `yaml:"overdue_scan"`
}

// DefaultPolicy is used when no policy file is configured.
func DefaultPolicy() Policy {
	return Policy{
		GraceDays:      services.DefaultGraceDays,
		Profile:        order.FullProfile(),
		TaxRatePct:     decimal.Zero,
		PricingPolicy:  services.DefaultPricingPolicy(),
		OverdueEnabled: true,
	}
}

// LoadPolicy reads the YAML policy file at path. An empty path yields DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file policyFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if err = policy.apply(file); err != nil {
		return Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return policy, nil
}

// WithTaxRate overrides the flat tax rate, as TAX_RATE_PCT does over the file.
func (p Policy) WithTaxRate(raw string) (Policy, error) {
	if raw == "" {
		return p, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return Policy{}, errs.NewValueIsInvalidErrorWithCause("taxRatePct", err)
	}
	if err = kernel.ValidateNonNegativeAmount("taxRatePct", rate); err != nil {
		return Policy{}, err
	}
	p.TaxRatePct = rate
	return p, nil
}

func (p *Policy) apply(file policyFile) error {
	var errList []error

	if file.GraceDays != nil {
		if *file.GraceDays < 0 {
			errList = append(errList, errs.NewValueIsOutOfRangeError("grace_days", *file.GraceDays, 0, "unbounded"))
		}
		p.GraceDays = *file.GraceDays
	}
	if file.Profile != nil {
		profile, err := order.ProfileByName(*file.Profile)
		errList = append(errList, err)
		p.Profile = profile
	}
	if file.TaxRatePct != nil {
		errList = append(errList, kernel.ValidateNonNegativeAmount("tax_rate_pct", *file.TaxRatePct))
		p.TaxRatePct = *file.TaxRatePct
	}
	if file.MinChargeRatio != nil {
		p.PricingPolicy.MinChargeRatio = *file.MinChargeRatio
	}
	if file.LatePenaltyMultiplier != nil {
		p.PricingPolicy.PenaltyMultiplier = *file.LatePenaltyMultiplier
	}
	if file.OverdueScan != nil {
		p.OverdueEnabled = *file.OverdueScan
	}
	errList = append(errList, p.PricingPolicy.Validate())

	return errors.Join(errList...)
}
