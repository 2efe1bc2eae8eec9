package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeGeneration(t *testing.T) {
	testCases := []struct {
		name     string
		fixture  string // directory name in etc/gen/
		target   string
		expected []string
		absent   []string
	}{
		{
			name:    "simple provider",
			fixture: "simple_provider",
			target:  "registry.go",
			expected: []string{
				"package registry",
				"treedi.Bind[*HelloService](c).",
				`Named("hello.service").`,
				"FromFactory(NewHelloService).",
				`Description("HelloService provides a greeting service").`,
				"AsSingleton()",
			},
		},
		{
			name:    "it should allow multi-lines description in providers",
			fixture: "multi_lines_description",
			target:  "registry.go",
			expected: []string{
				`Description("NewHelloService provides a greeting service\nIs a service providing hello functionality.\nThis service can be used to greet users.\nThis is \"really\" a 'complex' service with multiple lines of description.").`,
			},
		},
		{
			name:    "provider with dependencies",
			fixture: "provider_with_deps",
			target:  "registry.go",
			expected: []string{
				"treedi.Bind[*DatabaseConnection](c).",
				`FromFactory(NewDatabaseConnection, treedi.Inject.Auto(), treedi.Inject.Named("app.config").Parent(), treedi.Inject.Named("logger").Optional()).`,
				"AsTransient()",
			},
		},
		{
			name:    "config struct",
			fixture: "config",
			target:  "registry.go",
			expected: []string{
				`treedi.BindConfig[AppConfig](c, config.WithEnvPrefix("APP"))`,
				"treedi.BindConfigFields[AppConfig](c)",
			},
			absent: []string{"internalConfig"},
		},
		{
			name:    "provider with conditions",
			fixture: "conditional_provider",
			target:  "registry.go",
			expected: []string{
				`When(treedi.When("ENABLE_CACHE").Equals("true")).`,
				`When(treedi.When("ENV").NotEquals("test")).`,
				"NonLazy().",
				"Unique().",
			},
		},
		{
			name:    "multiple providers same name",
			fixture: "multiple_providers",
			target:  "registry.go",
			expected: []string{
				"FromFactory(NewDefaultRunner).",
				"FromFactory(NewDevRunner).",
				"FromFactory(NewStagingRunner).",
				`When(treedi.When("ENV").Equals("staging")).`,
			},
		},
		{
			name:    "constructor",
			fixture: "constructor",
			target:  "registry.go",
			expected: []string{
				"table := c.Descriptors()",
				`if err := table.Constructor(NewMailer, treedi.Inject.Named("mail.sender")); err != nil {`,
			},
			absent: []string{"newHiddenMailer", "treedi.Bind["},
		},
		{
			name:    "complex scenario",
			fixture: "complex",
			target:  filepath.Join("registry", "registry.go"),
			expected: []string{
				`cconfig "github.com/test/complex/config"`,
				`config "github.com/a-peyrard/treedi/config"`,
				`providers "github.com/test/complex/providers"`,
				`treedi.BindConfig[cconfig.AppConfig](c, config.WithEnvPrefix("APP"))`,
				"treedi.Bind[*providers.AppService](c).",
				`FromFactory(providers.NewAppService, treedi.Inject.Auto(), treedi.Inject.Named("cache"), treedi.Inject.All()).`,
				`FromFactory(providers.NewRedisCache, treedi.Inject.Optional()).`,
				"treedi.Bind[providers.Cache](c).",
				"treedi.Bind[*cconfig.Report](c).",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN
			tempDir := setupTestProject(t, tc.fixture)

			// WHEN
			outputPath, err := run(zerolog.Nop(), generation{targetFile: filepath.Join(tempDir, tc.target)})

			// THEN
			require.NoError(t, err)
			assert.Equal(t, "registry_gen.go", filepath.Base(outputPath))
			generated, err := os.ReadFile(outputPath)
			require.NoError(t, err)
			for _, expected := range tc.expected {
				assert.Contains(t, string(generated), expected)
			}
			for _, absent := range tc.absent {
				assert.NotContains(t, string(generated), absent)
			}
		})
	}

	t.Run("it should fail when the target file is outside of the module packages", func(t *testing.T) {
		// GIVEN
		tempDir := setupTestProject(t, "simple_provider")

		// WHEN
		_, err := run(zerolog.Nop(), generation{targetFile: filepath.Join(tempDir, "missing.go")})

		// THEN
		assert.ErrorContains(t, err, "is not part of a package")
	})
}

func setupTestProject(t *testing.T, fixture string) string {
	tempDir := t.TempDir()

	// Copy fixture files to temp directory
	fixtureDir := filepath.Join("etc", "gen", fixture)
	err := copyDir(fixtureDir, tempDir)
	require.NoError(t, err, "Failed to copy fixture files")

	return tempDir
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		dstPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(dstPath, info.Mode())
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		return os.WriteFile(dstPath, data, info.Mode())
	})
}
