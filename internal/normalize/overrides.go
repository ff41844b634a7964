package normalize

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/kgfoundry/biomapper/pkg/types"
)

// overrideFile is the on-disk shape of a vocabulary override file:
//
//	vocabularies:
//	  mylab:
//	    prefix: MYLAB
//	    pattern: '^[A-Z]\d{4}$'
//	    strip_prefixes: [ML]
//	    aliases: [ml]
//	    iri: https://example.org/mylab/
type overrideFile struct {
	Vocabularies map[string]overrideEntry `yaml:"vocabularies"`
}

type overrideEntry struct {
	Prefix        string   `yaml:"prefix"`
	Pattern       string   `yaml:"pattern"`
	StripPrefixes []string `yaml:"strip_prefixes"`
	Aliases       []string `yaml:"aliases"`
	IRI           string   `yaml:"iri"`
}

// LoadOverrides reads a YAML vocabulary override file into definitions
// suitable for Options.Overrides. Entries may introduce new vocabularies or
// replace built-in ones wholesale.
func LoadOverrides(path string) (map[string]Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewConfigurationError("reading vocabulary overrides: %v", err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, types.NewConfigurationError("parsing vocabulary overrides %s: %v", path, err)
	}

	overrides := make(map[string]Vocabulary, len(file.Vocabularies))
	for name, entry := range file.Vocabularies {
		vocab, err := entry.build(name)
		if err != nil {
			return nil, err
		}
		overrides[name] = vocab
	}
	return overrides, nil
}

func (e overrideEntry) build(name string) (Vocabulary, error) {
	if e.Prefix == "" {
		return Vocabulary{}, types.NewConfigurationError("vocabulary override %q is missing a prefix", name)
	}
	if e.Pattern == "" {
		return Vocabulary{}, types.NewConfigurationError("vocabulary override %q is missing a pattern", name)
	}
	re, err := regexp.Compile(e.Pattern)
	if err != nil {
		return Vocabulary{}, types.NewConfigurationError("vocabulary override %q has a bad pattern: %v", name, err)
	}

	vocab := Vocabulary{
		Prefix:   e.Prefix,
		Validate: fullMatch(re),
		Aliases:  e.Aliases,
		IRI:      e.IRI,
	}
	if len(e.StripPrefixes) > 0 {
		vocab.Clean = stripPrefix(e.StripPrefixes...)
	}
	return vocab, nil
}

// fullMatch anchors an override pattern so partial matches do not validate.
func fullMatch(re *regexp.Regexp) ValidatorFunc {
	return func(localID string) bool {
		loc := re.FindStringIndex(localID)
		return loc != nil && loc[0] == 0 && loc[1] == len(localID)
	}
}
