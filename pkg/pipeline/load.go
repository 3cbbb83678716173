package pipeline

import (
	"path/filepath"
	"strings"

	mdaoio "github.com/matzehuels/mdaograph/pkg/io"
	"github.com/matzehuels/mdaograph/pkg/problem"
)

// LoadDocument reads a problem from disk. Files ending in .hcl are problem
// definitions and yield an FPG document; anything else is read as a JSON
// graph document.
func LoadDocument(path string) (*mdaoio.Document, error) {
	if isHCL(path) {
		def, err := problem.Load(path)
		if err != nil {
			return nil, err
		}
		return fromDefinition(def)
	}
	return mdaoio.ImportJSON(path)
}

// ParseDocument decodes an in-memory problem. filename selects the format
// the same way as in [LoadDocument].
func ParseDocument(data []byte, filename string) (*mdaoio.Document, error) {
	if isHCL(filename) {
		def, err := problem.Parse(data, filename)
		if err != nil {
			return nil, err
		}
		return fromDefinition(def)
	}
	return mdaoio.UnmarshalJSON(data)
}

func fromDefinition(def *problem.Definition) (*mdaoio.Document, error) {
	fpg, err := def.FPG()
	if err != nil {
		return nil, err
	}
	return mdaoio.FromFPG(fpg), nil
}

func isHCL(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".hcl")
}
