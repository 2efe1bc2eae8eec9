package main

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	providerAnnotationTag    = "@provider"
	constructorAnnotationTag = "@constructor"
	whenAnnotationTag        = "@when"
	injectAnnotationTag      = "@inject"
	configAnnotationTag      = "@config"
)

var propertiesRegexp = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|(\w+))`)

type (
	// Annotation is a doc comment tag followed by key=value properties, with the free text of the
	// comment as description.
	Annotation struct {
		logger      *zerolog.Logger
		description string
		properties  map[string]string
		conditions  []WhenAnnotation
	}

	WhenAnnotation struct {
		Named     string
		Value     string
		NotEquals bool
	}

	InjectAnnotation struct {
		logger     *zerolog.Logger
		properties map[string]string
	}
)

var (
	providerProperties = []string{"named", "scope", "nonlazy", "unique"}
	configProperties   = []string{"prefix", "fields"}
	injectProperties   = []string{"named", "optional", "source", "all"}
)

func (a Annotation) Named() (named string, found bool) {
	named, found = a.properties["named"]
	return named, found
}

func (a Annotation) Get(key string) string {
	return a.properties[key]
}

func (a Annotation) Bool(key string) bool {
	return parseBool(a.logger, a.properties, key)
}

// UnknownProperties lists the properties not in known, sorted for stable warnings.
func (a Annotation) UnknownProperties(known []string) []string {
	return unknownProperties(a.properties, known)
}

func (w WhenAnnotation) String() string {
	if w.NotEquals {
		return fmt.Sprintf("%s != %q", w.Named, w.Value)
	}
	return fmt.Sprintf("%s == %q", w.Named, w.Value)
}

func (a InjectAnnotation) String() string {
	return fmt.Sprintf("InjectAnnotation(%v)", a.properties)
}

func (a InjectAnnotation) Named() (named string, found bool) {
	named, found = a.properties["named"]
	return named, found
}

func (a InjectAnnotation) Optional() bool {
	return parseBool(a.logger, a.properties, "optional")
}

func (a InjectAnnotation) All() bool {
	return parseBool(a.logger, a.properties, "all")
}

func (a InjectAnnotation) Source() string {
	return strings.ToLower(a.properties["source"])
}

// Expression renders the dependency builder call for the parameter, empty for the default one.
func (a InjectAnnotation) Expression(treediAlias string) string {
	var b strings.Builder
	if named, found := a.Named(); found {
		b.WriteString(fmt.Sprintf(".Named(%q)", named))
	}
	if a.Optional() {
		b.WriteString(".Optional()")
	}
	switch a.Source() {
	case "local":
		b.WriteString(".Local()")
	case "parent":
		b.WriteString(".Parent()")
	case "", "any":
	default:
		if a.logger != nil {
			a.logger.Warn().Msgf("Unknown source %q, expected any, local or parent, ignoring it", a.Source())
		}
	}
	if a.All() {
		b.WriteString(".All()")
	}
	if b.Len() == 0 {
		return ""
	}
	return treediAlias + ".Inject" + b.String()
}

// parseAnnotation reads the tag line and the @when lines of a doc comment, every other non empty line
// is part of the description.
func parseAnnotation(logger *zerolog.Logger, docText string, tag string) Annotation {
	var (
		descriptionLines []string
		annotationLine   string
		conditions       []WhenAnnotation
	)
	for _, line := range strings.Split(docText, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, tag):
			annotationLine = line
		case strings.HasPrefix(line, whenAnnotationTag):
			condition, err := parseWhenAnnotation(line)
			if err != nil {
				logger.Warn().Err(err).Msg("Invalid condition, skipping it")
				continue
			}
			conditions = append(conditions, condition)
		case strings.HasPrefix(line, "@"):
			logger.Warn().Msgf("Unknown annotation %q, skipping it", strings.Fields(line)[0])
		case line != "":
			descriptionLines = append(descriptionLines, line)
		}
	}

	return Annotation{
		logger:      logger,
		description: strings.TrimSpace(strings.Join(descriptionLines, "\n")),
		properties:  parseProperties(annotationLine, tag),
		conditions:  conditions,
	}
}

func parseWhenAnnotation(line string) (WhenAnnotation, error) {
	properties := parseProperties(line, whenAnnotationTag)
	named, found := properties["named"]
	if !found {
		return WhenAnnotation{}, fmt.Errorf("condition %q is missing 'named' property", line)
	}
	if value, found := properties["equals"]; found {
		return WhenAnnotation{Named: named, Value: value}, nil
	}
	if value, found := properties["not_equals"]; found {
		return WhenAnnotation{Named: named, Value: value, NotEquals: true}, nil
	}
	return WhenAnnotation{}, fmt.Errorf("condition %q is missing 'equals' or 'not_equals' property", line)
}

func parseProperties(line string, tag string) map[string]string {
	properties := make(map[string]string)

	content := strings.TrimSpace(strings.TrimPrefix(line, tag))
	if content == "" {
		return properties
	}

	for _, match := range propertiesRegexp.FindAllStringSubmatch(content, -1) {
		key := match[1]
		// match[2] is quoted value, match[3] is unquoted value
		value := match[2]
		if value == "" {
			value = match[3]
		}
		properties[key] = value
	}

	return properties
}

func parseInjectAnnotation(logger *zerolog.Logger, comment string) InjectAnnotation {
	content := strings.TrimPrefix(comment, "//")
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, injectAnnotationTag) {
		return InjectAnnotation{logger: logger, properties: make(map[string]string)}
	}

	annotation := InjectAnnotation{
		logger:     logger,
		properties: parseProperties(content, injectAnnotationTag),
	}
	if unknown := unknownProperties(annotation.properties, injectProperties); len(unknown) > 0 {
		logger.Warn().Msgf("Unknown inject properties %v, skipping them", unknown)
	}
	return annotation
}

func parseBool(logger *zerolog.Logger, properties map[string]string, key string) bool {
	raw, found := properties[key]
	if !found {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		if logger != nil {
			logger.Warn().Err(err).Msgf("Error parsing %s, not a correct bool", key)
		}
		return false
	}
	return value
}

func unknownProperties(properties map[string]string, known []string) []string {
	var unknown []string
	for key := range properties {
		if !contains(known, key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
