package query

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphql
var petLibrarySDL string

// Schema is a loaded, validated GraphQL schema that documents are checked
// against.
type Schema struct {
	s *ast.Schema
}

// LoadSchema parses and validates sdl. name is used in error positions.
func LoadSchema(name, sdl string) (*Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("query: load schema %s: %w", name, err)
	}
	return &Schema{s: s}, nil
}

var petLibrary = sync.OnceValues(func() (*Schema, error) {
	return LoadSchema("schema.graphql", petLibrarySDL)
})

// PetLibrary returns the embedded Pet Library schema. It is loaded once.
func PetLibrary() (*Schema, error) {
	return petLibrary()
}
