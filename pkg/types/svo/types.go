// Package svo defines the Subject-Verb-Object tuple type consumed by the
// trait inference pipeline.  Tuples are produced by an upstream extraction
// process outside this platform; validation here is the fail-fast boundary
// for malformed input.
package svo

import (
	"fmt"
	"strings"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

// Tuple is one (subject, verb, object) triple extracted from descriptive
// text.  All three elements are stored verbatim and never mutated by the
// pipeline.
type Tuple struct {
	Subject string `json:"subject"`
	Verb    string `json:"verb"`
	Object  string `json:"object"`
}

// Validate rejects tuples whose elements are empty or whitespace-only, the
// Go analogue of null / non-string elements in loosely-typed producers.
// The engine calls this before any computation so no malformed tuple
// reaches the inference path.
func (t Tuple) Validate() error {
	if strings.TrimSpace(t.Subject) == "" {
		return errors.New(errors.ErrCodeSVOInvalidTuple, "subject must not be empty")
	}
	if strings.TrimSpace(t.Verb) == "" {
		return errors.New(errors.ErrCodeSVOInvalidTuple, "verb must not be empty")
	}
	if strings.TrimSpace(t.Object) == "" {
		return errors.New(errors.ErrCodeSVOInvalidTuple, "object must not be empty")
	}
	return nil
}

// String renders the tuple for logs and CLI output.
func (t Tuple) String() string {
	return fmt.Sprintf("(%s, %s, %s)", t.Subject, t.Verb, t.Object)
}
