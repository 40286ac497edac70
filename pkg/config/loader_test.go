package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distribuia/distribuia/pkg/config"
)

type testConfig struct {
	Name  string `env:"CONFIG_TEST_NAME" envDefault:"distribuia"`
	Limit int    `env:"CONFIG_TEST_LIMIT" envDefault:"10"`
}

type overrideConfig struct {
	Value string `env:"CONFIG_TEST_VALUE"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "distribuia", cfg.Name)
		assert.Equal(t, 10, cfg.Limit)
	})

	t.Run("environment overrides default", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_VALUE", "from-env")

		var cfg overrideConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from-env", cfg.Value)
	})

	t.Run("second load returns cached value", func(t *testing.T) {
		var first testConfig
		require.NoError(t, config.Load(&first))

		// The cache ignores later env changes by design.
		t.Setenv("CONFIG_TEST_NAME", "changed")
		var second testConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}
