package config

import (
	"fmt"

	"github.com/fenilsonani/winsweep/pkg/utils"
	"gopkg.in/yaml.v3"
)

// ByteSize is a byte count written in config files as "100MB", "1 GiB" or a
// plain integer.
type ByteSize int64

// Int64 returns the size in bytes
func (b ByteSize) Int64() int64 {
	return int64(b)
}

func (b ByteSize) String() string {
	return utils.FormatBytes(int64(b))
}

// UnmarshalYAML implements yaml.Unmarshaler
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: byte size must be a scalar", value.Line)
	}
	n, err := utils.ParseSize(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*b = ByteSize(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler. Sizes that are a whole number of
// a unit are written with that unit; anything else as a plain integer.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	n := int64(b)
	units := []struct {
		size   int64
		suffix string
	}{
		{utils.TB, "TB"},
		{utils.GB, "GB"},
		{utils.MB, "MB"},
		{utils.KB, "KB"},
	}
	for _, u := range units {
		if n >= u.size && n%u.size == 0 {
			return fmt.Sprintf("%d%s", n/u.size, u.suffix), nil
		}
	}
	return n, nil
}
