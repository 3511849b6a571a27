package config_test

import (
	"testing"

	"github.com/muhmi/c64anim/config"
)

func TestDefaultValidates(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Fatalf("Default() fails Validate: %v", err)
	}
}

func TestValidateRejectsNonPositiveNMax(t *testing.T) {
	c := config.Default()
	c.NMax = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for NMax = 0")
	}
}

func TestValidateRejectsThresholdOutOfRange(t *testing.T) {
	for _, th := range []int{0, 8, -1} {
		c := config.Default()
		c.StartThreshold = th
		if err := c.Validate(); err == nil {
			t.Fatalf("expected an error for StartThreshold = %d", th)
		}
	}
}

func TestValidateRejectsEmptyBlockSizes(t *testing.T) {
	c := config.Default()
	c.BlockSizes = nil
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for empty BlockSizes")
	}
}
