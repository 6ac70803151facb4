// Package detect sniffs a project root for language and toolchain
// facts using marker files. Detection never executes project code; it
// only reads well-known manifests.
package detect

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// MarkerDetector detects project facts from marker files.
type MarkerDetector struct{}

var _ ports.ProjectDetector = (*MarkerDetector)(nil)

// NewMarkerDetector creates a detector.
func NewMarkerDetector() *MarkerDetector {
	return &MarkerDetector{}
}

// Detect inspects root and reports what it found. Unknown projects get
// language "unknown" rather than an error.
func (d *MarkerDetector) Detect(root string) domain.ProjectFacts {
	switch {
	case exists(root, "go.mod"):
		return domain.ProjectFacts{
			Language:       "go",
			PackageManager: "go",
			TestFramework:  "go test",
		}
	case exists(root, "package.json"):
		return nodeFacts(root)
	case exists(root, "pyproject.toml"), exists(root, "setup.py"), exists(root, "requirements.txt"), exists(root, "Pipfile"):
		return pythonFacts(root)
	case exists(root, "Cargo.toml"):
		return domain.ProjectFacts{
			Language:       "rust",
			PackageManager: "cargo",
			TestFramework:  "cargo test",
		}
	case exists(root, "pom.xml"):
		return domain.ProjectFacts{
			Language:       "java",
			PackageManager: "maven",
			TestFramework:  "junit",
		}
	case exists(root, "build.gradle"), exists(root, "build.gradle.kts"):
		return domain.ProjectFacts{
			Language:       "java",
			PackageManager: "gradle",
			TestFramework:  "junit",
		}
	default:
		return domain.ProjectFacts{Language: "unknown"}
	}
}

func exists(root string, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

// packageJSON is the subset of package.json detection cares about.
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func nodeFacts(root string) domain.ProjectFacts {
	facts := domain.ProjectFacts{Language: "javascript"}

	switch {
	case exists(root, "pnpm-lock.yaml"):
		facts.PackageManager = "pnpm"
	case exists(root, "yarn.lock"):
		facts.PackageManager = "yarn"
	case exists(root, "bun.lockb"):
		facts.PackageManager = "bun"
	default:
		facts.PackageManager = "npm"
	}

	pkg := readPackageJSON(filepath.Join(root, "package.json"))
	deps := map[string]struct{}{}
	for name := range pkg.Dependencies {
		deps[name] = struct{}{}
	}
	for name := range pkg.DevDependencies {
		deps[name] = struct{}{}
	}

	has := func(name string) bool {
		_, ok := deps[name]
		return ok
	}

	switch {
	case has("next"):
		facts.Framework = "nextjs"
	case has("react"):
		facts.Framework = "react"
	case has("nuxt"):
		facts.Framework = "nuxt"
	case has("vue"):
		facts.Framework = "vue"
	case has("@angular/core"):
		facts.Framework = "angular"
	case has("svelte"):
		facts.Framework = "svelte"
	case has("express"):
		facts.Framework = "express"
	}

	switch {
	case has("jest"):
		facts.TestFramework = "jest"
	case has("vitest"):
		facts.TestFramework = "vitest"
	case has("mocha"):
		facts.TestFramework = "mocha"
	case has("jasmine"):
		facts.TestFramework = "jasmine"
	}

	return facts
}

func readPackageJSON(path string) packageJSON {
	var pkg packageJSON
	data, err := os.ReadFile(path)
	if err != nil {
		return pkg
	}
	// A malformed manifest just means fewer facts.
	_ = json.Unmarshal(data, &pkg)
	return pkg
}

func pythonFacts(root string) domain.ProjectFacts {
	facts := domain.ProjectFacts{Language: "python"}

	switch {
	case exists(root, "poetry.lock"):
		facts.PackageManager = "poetry"
	case exists(root, "Pipfile.lock"), exists(root, "Pipfile"):
		facts.PackageManager = "pipenv"
	case exists(root, "uv.lock"):
		facts.PackageManager = "uv"
	default:
		facts.PackageManager = "pip"
	}

	if exists(root, "pytest.ini") || exists(root, "conftest.py") || mentionsPytest(root) {
		facts.TestFramework = "pytest"
	}
	if exists(root, "manage.py") {
		facts.Framework = "django"
	}

	return facts
}

// mentionsPytest reports whether pyproject.toml references pytest.
// The check is a plain substring scan, not a TOML parse.
func mentionsPytest(root string) bool {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return false
	}
	return bytes.Contains(data, []byte("pytest"))
}
