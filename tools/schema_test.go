package tools

import (
	"github.com/vibelang-org/vibe/registry"
)

func toolDescriptorForTest() *registry.ToolDescriptor {
	return &registry.ToolDescriptor{
		Name:        "search",
		Description: "looks something up",
		Params: []registry.ParamSchema{
			{Name: "query", Type: "text", Description: "the search text"},
			{Name: "count", Type: "number", Description: "how many results"},
		},
	}
}
