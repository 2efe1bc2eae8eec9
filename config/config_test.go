package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	TestConfig struct {
		Foo *FooTestConfig
		Bar *BarTestConfig
	}
	FooTestConfig struct {
		Hello string
		World int
	}
	BarTestConfig struct {
		First  int
		Second int
	}
	MultipleWordsConfig struct {
		FooBar     int
		CustomerId int
	}
	TaggedConfig struct {
		MaxDepth int    `mapstructure:"max_depth"`
		LogLevel string `mapstructure:"log_level"`
	}
)

func (c *BarTestConfig) ApplyDefault() {
	if c.First == 0 {
		c.First = 42
	}
}

func TestLoad(t *testing.T) {
	t.Run("it should load basic struct", func(t *testing.T) {
		// GIVEN
		t.Setenv("FOO_HELLO", "waldo")
		t.Setenv("FOO_WORLD", "23")

		// WHEN
		conf, err := Load[FooTestConfig](WithEnvPrefix("FOO"))

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "waldo", conf.Hello)
		assert.Equal(t, 23, conf.World)
	})

	t.Run("it should load nested structs from env vars", func(t *testing.T) {
		// GIVEN
		t.Setenv("TEST_FOO_HELLO", "waldo")
		t.Setenv("TEST_BAR_FIRST", "12")
		t.Setenv("TEST_BAR_SECOND", "66")

		// WHEN
		conf, err := Load[TestConfig](WithEnvPrefix("TEST"))

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "waldo", conf.Foo.Hello)
		assert.Equal(t, 12, conf.Bar.First)
		assert.Equal(t, 66, conf.Bar.Second)
	})

	t.Run("it should initialize nested structs and apply defaults", func(t *testing.T) {
		// WHEN
		conf, err := Load[TestConfig](WithEnvPrefix("EMPTY"))

		// THEN
		require.NoError(t, err)
		require.NotNil(t, conf.Foo)
		assert.Equal(t, "", conf.Foo.Hello)
		assert.Equal(t, 42, conf.Bar.First)
	})

	t.Run("it should bind correctly multiple words variables", func(t *testing.T) {
		// GIVEN
		t.Setenv("TEST_FOO_BAR", "12")
		t.Setenv("TEST_CUSTOMER_ID", "66")

		// WHEN
		conf, err := Load[MultipleWordsConfig](WithEnvPrefix("TEST"))

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 12, conf.FooBar)
		assert.Equal(t, 66, conf.CustomerId)
	})

	t.Run("it should honor mapstructure tags", func(t *testing.T) {
		// GIVEN
		t.Setenv("TAGGED_MAX_DEPTH", "64")

		// WHEN
		conf, err := Load[TaggedConfig](WithEnvPrefix("TAGGED"), WithValue("log_level", "warn"))

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 64, conf.MaxDepth)
		assert.Equal(t, "warn", conf.LogLevel)
	})

	t.Run("it should read values from a dot env file", func(t *testing.T) {
		// GIVEN
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("DOTENV_HELLO=from-file\nDOTENV_WORLD=7\n"), 0o600))
		t.Setenv("DOTENV_WORLD", "8")
		t.Cleanup(func() { _ = os.Unsetenv("DOTENV_HELLO") })

		// WHEN
		conf, err := Load[FooTestConfig](WithEnvPrefix("DOTENV"), WithDotEnv(path))

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "from-file", conf.Hello)
		assert.Equal(t, 8, conf.World)
	})

	t.Run("it should skip missing dot env files", func(t *testing.T) {
		// WHEN
		_, err := Load[FooTestConfig](WithDotEnv(filepath.Join(t.TempDir(), "missing.env")))

		// THEN
		assert.NoError(t, err)
	})
}
