package glossary

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

// corpusFile is the on-disk YAML shape of a glossary corpus:
//
//	terms:
//	  - name: labellum
//	    category: Floral Organ
//	    ai_derivable: true
//	    measurement_unit: mm
//	    synonyms: [lip]
type corpusFile struct {
	Terms []Term `yaml:"terms"`
}

// LoadFile reads a YAML glossary corpus from path and builds a Glossary.
// An empty corpus is rejected: a glossary with zero terms would make every
// enhancement silently empty, which is indistinguishable from "no botanical
// content" downstream.
func LoadFile(path string) (*Glossary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGlossaryLoadFailed, "failed to read glossary corpus").
			WithDetail("path=" + path)
	}
	return Parse(data)
}

// Parse builds a Glossary from raw YAML corpus bytes.
func Parse(data []byte) (*Glossary, error) {
	var corpus corpusFile
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGlossaryLoadFailed, "failed to parse glossary corpus")
	}
	if len(corpus.Terms) == 0 {
		return nil, errors.New(errors.ErrCodeGlossaryEmpty, "glossary corpus contains no terms")
	}
	return New(corpus.Terms)
}
