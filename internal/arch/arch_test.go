package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

// TestImportBoundaries keeps the core scanning/selection/partitioning
// packages free of the CLI and coordinator layers above them, so the hard
// engineering stays usable as a library independent of how a binary
// wires it up.
func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	bans := map[string][]string{
		"filterfasta/internal/hitindex": {
			"filterfasta/internal/cli", "filterfasta/internal/coordinator",
			"filterfasta/internal/runctl", "filterfasta/cmd/",
		},
		"filterfasta/internal/partition": {
			"filterfasta/internal/cli", "filterfasta/internal/coordinator",
			"filterfasta/internal/runctl", "filterfasta/cmd/",
		},
		"filterfasta/internal/scanner": {
			"filterfasta/internal/cli", "filterfasta/internal/coordinator",
			"filterfasta/internal/runctl", "filterfasta/cmd/",
		},
		"filterfasta/internal/selector": {
			"filterfasta/internal/cli", "filterfasta/internal/coordinator",
			"filterfasta/internal/runctl", "filterfasta/cmd/",
		},
		"filterfasta/internal/iofacade": {
			"filterfasta/internal/cli", "filterfasta/internal/coordinator",
			"filterfasta/internal/scanner", "filterfasta/internal/runctl", "filterfasta/cmd/",
		},
		"filterfasta/internal/coordinator": {
			"filterfasta/internal/cli", "filterfasta/cmd/",
		},
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, "filterfasta/") {
			continue
		}
		imp := p.ImportPath
		for prefix, forbidden := range bans {
			if !strings.HasPrefix(imp, prefix) {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, "filterfasta/") {
					continue
				}
				for _, ban := range forbidden {
					if strings.HasPrefix(dep, ban) {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
