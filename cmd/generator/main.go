// Command generator scans a module for annotated constructors, providers and config structs, and writes
// a Register function binding them in a treedi container. It is meant to run through go:generate:
//
//	//go:generate go run github.com/a-peyrard/treedi/cmd/generator
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-peyrard/treedi/logging"
	"github.com/a-peyrard/treedi/slices"
	"github.com/rs/zerolog"
)

func findModuleRoot(dir string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached root
		}
		dir = parent
	}
	return "."
}

func main() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "debug"
	}
	logger, err := logging.New(logging.WithLevel(level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logger configuration: %v\n", err)
		os.Exit(1)
	}

	currentDir, _ := os.Getwd()
	outputPath, err := run(logger, generation{
		targetFile: filepath.Join(currentDir, os.Getenv("GOFILE")),
		dryRun:     os.Getenv("DRY_RUN") == "true",
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate code")
		os.Exit(1)
	}
	logger.Info().Msgf("✅ Code generated successfully in %s", outputPath)
}

type generation struct {
	// targetFile is the file holding the go:generate directive, the code is generated next to it
	targetFile string
	dryRun     bool
}

func run(logger zerolog.Logger, gen generation) (string, error) {
	startScan := time.Now()

	// the whole module is scanned, not only the package of the target file
	moduleRoot := findModuleRoot(filepath.Dir(gen.targetFile))
	defs, err := scan(logger, moduleRoot)
	if err != nil {
		return "", err
	}
	target, found := defs.Files[canonicalPath(gen.targetFile)]
	if !found {
		return "", fmt.Errorf("target file %s is not part of a package of module %s", gen.targetFile, moduleRoot)
	}
	stopScan := time.Now()

	logger.Info().Msgf("👨‍🔧 Target package: %s", target.Path)
	logger.Info().Msgf("🎯 %d providers found in the module", len(defs.Providers))
	logger.Debug().Msgf("Providers:\n%s", strings.Join(slices.Map(defs.Providers, ProviderDefinition.String), "\n----\n"))
	logger.Info().Msgf("🎯 %d constructors found in the module", len(defs.Constructors))
	logger.Debug().Msgf("Constructors:\n%s", strings.Join(slices.Map(defs.Constructors, ConstructorDefinition.String), "\n----\n"))
	logger.Info().Msgf("🎯 %d config found in the module", len(defs.Configs))
	logger.Debug().Msgf("Configs:\n%s", strings.Join(slices.Map(defs.Configs, ConfigDefinition.String), "\n----\n"))
	logger.Info().Msgf("🕵️‍♂️ Scanning completed in %s", stopScan.Sub(startScan))

	outputPath := filepath.Join(
		filepath.Dir(gen.targetFile),
		strings.TrimSuffix(filepath.Base(gen.targetFile), ".go")+"_gen.go",
	)
	if gen.dryRun {
		outputPath = filepath.Join(os.TempDir(), filepath.Base(outputPath))
	}

	if err := generateCode(outputPath, target, defs); err != nil {
		return "", fmt.Errorf("failed to generate code in %s:\n\t%w", outputPath, err)
	}
	return outputPath, nil
}
