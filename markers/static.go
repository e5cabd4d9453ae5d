// Package markers provides sandwich.MarkerSource implementations.
package markers

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wtf-protocol/helpers/sandwich"
	"github.com/wtf-protocol/helpers/utils"
)

// Static serves markers held in memory, usually loaded from a YAML file:
//
//	bottom_bread: "0x22737562223a22"
//	top_bread: "0x222c"
//	exp_bottom_bread: "0x2c22657870223a"
//	exp_top_bread: "0x2c"
//	aud: "0x22617564223a22..."
//
// Values are hex with an optional 0x prefix, as returned by the verifier
// contract getters.
type Static struct {
	BottomBread    string `yaml:"bottom_bread"`
	TopBread       string `yaml:"top_bread"`
	ExpBottomBread string `yaml:"exp_bottom_bread"`
	ExpTopBread    string `yaml:"exp_top_bread"`
	Aud            string `yaml:"aud"`
}

// LoadFile reads a Static marker set from a YAML file.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markers file: %w", err)
	}

	var s Static
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse markers file %s: %w", path, err)
	}

	return &s, nil
}

func (s *Static) Bread(_ context.Context, kind sandwich.ClaimKind) (sandwich.Bread, error) {
	if err := sandwich.CheckBreadKind(kind); err != nil {
		return sandwich.Bread{}, err
	}

	bottom, top := s.BottomBread, s.TopBread
	if kind == sandwich.ClaimExpiry {
		bottom, top = s.ExpBottomBread, s.ExpTopBread
	}

	bottomBytes, err := utils.DecodeHex(bottom)
	if err != nil {
		return sandwich.Bread{}, fmt.Errorf("invalid %s bottom bread: %w", kind, err)
	}
	topBytes, err := utils.DecodeHex(top)
	if err != nil {
		return sandwich.Bread{}, fmt.Errorf("invalid %s top bread: %w", kind, err)
	}

	return sandwich.Bread{Bottom: bottomBytes, Top: topBytes}, nil
}

func (s *Static) Audience(_ context.Context) ([]byte, error) {
	aud, err := utils.DecodeHex(s.Aud)
	if err != nil {
		return nil, fmt.Errorf("invalid aud: %w", err)
	}
	if len(aud) == 0 {
		return nil, fmt.Errorf("no aud marker configured")
	}
	return aud, nil
}
