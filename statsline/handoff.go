package statsline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vfx-infra/dcctest/types"
)

// EnvVar is the reserved environment variable carrying the serialized
// configuration snapshot into a spawned child. Its mere presence marks
// the process as a dispatched child and short-circuits normal config
// loading.
const EnvVar = "DCCTEST_SETTINGS"

// handoffVersion is bumped when the wire shape of the snapshot changes
// incompatibly. A child refuses snapshots from a different major version
// instead of guessing at missing fields.
const handoffVersion = 1

// handoff is the envelope written into EnvVar.
type handoff struct {
	Version int             `json:"v"`
	Config  types.RunConfig `json:"config"`
}

// EncodeHandoff serializes a configuration snapshot for a child process.
// The caller passes a clone, never the live parent object.
func EncodeHandoff(cfg *types.RunConfig) (string, error) {
	raw, err := json.Marshal(handoff{Version: handoffVersion, Config: *cfg})
	if err != nil {
		return "", fmt.Errorf("encoding settings handoff: %w", err)
	}
	return string(raw), nil
}

// DecodeHandoff rebuilds a configuration from a serialized snapshot. The
// result fully replaces the receiver's own settings; IsSubprocess is
// forced true regardless of what the snapshot says.
func DecodeHandoff(serialized string) (*types.RunConfig, error) {
	var h handoff
	if err := json.Unmarshal([]byte(serialized), &h); err != nil {
		return nil, fmt.Errorf("decoding settings handoff: %w", err)
	}
	if h.Version != handoffVersion {
		return nil, fmt.Errorf("settings handoff version %d not supported (want %d)", h.Version, handoffVersion)
	}
	cfg := h.Config
	cfg.IsSubprocess = true
	if cfg.Stats == nil {
		cfg.Stats = &types.RunStats{}
	}
	return &cfg, nil
}

// HandoffFromEnv decodes the snapshot from the current environment, if
// present. The boolean reports whether this process is a dispatched
// child at all.
func HandoffFromEnv() (*types.RunConfig, bool, error) {
	serialized, ok := os.LookupEnv(EnvVar)
	if !ok {
		return nil, false, nil
	}
	cfg, err := DecodeHandoff(serialized)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}
