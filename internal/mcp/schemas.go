package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// analyzeDocumentationTool returns the tool definition for analyze_documentation
func analyzeDocumentationTool() mcp.Tool {
	return mcp.Tool{
		Name:        "analyze_documentation",
		Description: "Evaluate the Javadoc of every documented method under a Java source path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a .java file or a directory of Java sources",
				},
				"dry_run": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, score offline from tag coverage instead of calling the evaluation service",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getRunTool returns the tool definition for get_run
func getRunTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_run",
		Description: "Return a stored analysis run with every method result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID returned by analyze_documentation",
				},
			},
			Required: []string{"run_id"},
		},
	}
}

// searchMethodsTool returns the tool definition for search_methods
func searchMethodsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_methods",
		Description: "Find methods of a stored run, lowest documentation score first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID returned by analyze_documentation",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Keywords matched against method name, signature and description",
				},
				"max_score": map[string]interface{}{
					"type":        "number",
					"description": "Only return evaluated methods scoring at or below this value",
					"minimum":     1,
					"maximum":     5,
				},
				"class": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one class",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"run_id"},
		},
	}
}
