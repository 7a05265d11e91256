package harness

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vfx-infra/dcctest/types"
)

// unmarshalStrict decodes a result trailer payload, rejecting unknown
// keys and missing fields so a random JSON-looking output line can never
// be mistaken for a result.
func unmarshalStrict(payload string, out *types.FileResult) error {
	var probe struct {
		TestsRun *int `json:"tests_run"`
		Failures *int `json:"failures"`
		Errors   *int `json:"errors"`
	}
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&probe); err != nil {
		return err
	}
	if probe.TestsRun == nil || probe.Failures == nil || probe.Errors == nil {
		return fmt.Errorf("incomplete result payload")
	}
	out.TestsRun = *probe.TestsRun
	out.Failures = *probe.Failures
	out.Errors = *probe.Errors
	return nil
}
