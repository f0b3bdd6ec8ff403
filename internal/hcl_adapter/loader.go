package hcl_adapter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL document loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Document *documentBlock `hcl:"document,block"`
	Objects  []*objectBlock `hcl:"object,block"`
	Remain   hcl.Body       `hcl:",remain"`
}

type documentBlock struct {
	Name string `hcl:"name,optional"`
}

type objectBlock struct {
	Type   string       `hcl:"type,label"`
	Name   string       `hcl:"name,label"`
	Label  string       `hcl:"label,optional"`
	Script *scriptBlock `hcl:"script,block"`
	Body   hcl.Body     `hcl:",remain"`
}

type scriptBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Load parses every .hcl file found under paths and merges their object
// blocks into one model. Object names must be unique across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %s", strings.Join(paths, ", "))
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	seen := make(map[string]hcl.Range)
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if root.Document != nil && root.Document.Name != "" {
			if model.Name != "" && model.Name != root.Document.Name {
				return nil, fmt.Errorf("%s: document name '%s' conflicts with '%s'", file, root.Document.Name, model.Name)
			}
			model.Name = root.Document.Name
		}

		for _, block := range root.Objects {
			obj, err := l.translateObject(ctx, block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if prev, dup := seen[obj.Name]; dup {
				return nil, fmt.Errorf("%s: duplicate object name '%s', previously declared at %s", obj.Range, obj.Name, prev)
			}
			seen[obj.Name] = obj.Range
			model.Objects = append(model.Objects, obj)
		}
	}

	if model.Name == "" {
		model.Name = documentNameFromPath(hclFiles[0])
	}
	logger.Debug("HCL loading complete.", "document", model.Name, "objects", len(model.Objects))
	return model, nil
}

func documentNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
