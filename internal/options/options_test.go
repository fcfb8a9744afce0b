package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// compressorConfig stands in for the kind of target type this package's
// options configure elsewhere in the module (segment.Writer, for
// instance): a handful of settings, one of which can reject a bad value.
type compressorConfig struct {
	level   int
	dict    string
	applied []string
}

func (c *compressorConfig) setLevel(level int) error {
	if level < 0 || level > 9 {
		return errors.New("level must be between 0 and 9")
	}
	c.level = level
	c.applied = append(c.applied, "level")
	return nil
}

func (c *compressorConfig) setDict(dict string) {
	c.dict = dict
	c.applied = append(c.applied, "dict")
}

func withLevel(level int) Option[*compressorConfig] {
	return func(c *compressorConfig) error {
		return c.setLevel(level)
	}
}

func withDict(dict string) Option[*compressorConfig] {
	return NoError(func(c *compressorConfig) {
		c.setDict(dict)
	})
}

func TestApply_RunsOptionsInOrder(t *testing.T) {
	cfg := &compressorConfig{}

	err := Apply(cfg, withLevel(3), withDict("en-US"))
	require.NoError(t, err)
	require.Equal(t, 3, cfg.level)
	require.Equal(t, "en-US", cfg.dict)
	require.Equal(t, []string{"level", "dict"}, cfg.applied)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &compressorConfig{}

	err := Apply(cfg, withLevel(3), withLevel(99), withDict("should not run"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "level must be between 0 and 9")
	require.Equal(t, 3, cfg.level)
	require.Equal(t, "", cfg.dict)
}

func TestApply_EmptyOptionsIsNoop(t *testing.T) {
	cfg := &compressorConfig{}
	require.NoError(t, Apply(cfg))
	require.Zero(t, cfg.level)
}

func TestNoError_NeverFails(t *testing.T) {
	cfg := &compressorConfig{}
	opt := NoError(func(c *compressorConfig) { c.setDict("fr-FR") })

	require.NoError(t, opt(cfg))
	require.Equal(t, "fr-FR", cfg.dict)
}
