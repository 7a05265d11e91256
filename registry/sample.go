package registry

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteSampleConfig scaffolds a commented sample config file inside the
// target folder. It fails when the target folder is inaccessible and
// refuses to overwrite an existing config file.
func WriteSampleConfig(target string) (string, error) {
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("target folder not accessible: %s", target)
	}

	path := filepath.Join(target, ".config")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return "", fmt.Errorf("writing sample config: %w", err)
	}
	return path, nil
}

const sampleConfig = `# -----------------------------------------------------------------------------
# dcctest config file
# -----------------------------------------------------------------------------
# (This is essentially just a JSON file that supports comments.)

{

    # Declare every context that should run.
    #
    # A context name must match the subfolder name holding its tests.
    # Composite contexts are supported: with the setup below, all tests
    # in subfolder "python" run in both the "python3.x" and the
    # "python2.x" context.
    #
    # - Adapt the executables and versions to your site install.
    # - Delete or comment out contexts you don't need.
    "context_details" :
    {
        # ---------------------------------------------------------------------
        "python2.x" :
        {
            "executable" : "/usr/local/python27/bin/python"
        },
        # ---------------------------------------------------------------------
        "python3.x" :
        {
            "executable" : "/usr/local/python311/bin/python"
        },
        # ---------------------------------------------------------------------
        "python" :
        {
            "nested_contexts" :
            [
                "python3.x",
                "python2.x"
            ]
        },

        # ---------------------------------------------------------------------
        "mayapy" :
        {
            "executable" : "/usr/autodesk/maya2024/bin/mayapy",
            "version" : "2024"
        },
        # ---------------------------------------------------------------------
        "maya" :
        {
            "executable" : "/usr/autodesk/maya2024/bin/maya",
            "version" : "2024"
        },
        # ---------------------------------------------------------------------
        "hython" :
        {
            "executable" : "/opt/hfs19.5/bin/hython",
            "version" : "19.5.605"
        },
        # ---------------------------------------------------------------------
        "houdini" :
        {
            "executable" : "/opt/hfs19.5/bin/houdini",
            "version" : "19.5.605"
        }
    }
}
`
