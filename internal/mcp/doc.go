// Package mcp implements the Model Context Protocol (MCP) server for docaudit.
//
// The MCP server exposes three tools to AI coding assistants:
//   - analyze_documentation: Evaluate the Javadoc under a Java source path
//   - get_run: Return a stored run with its method results
//   - search_methods: Find stored methods, worst documented first
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is started via the serve command:
//
//	docaudit serve
//
// # Tool: analyze_documentation
//
//	Request:
//	{
//	  "name": "analyze_documentation",
//	  "arguments": {
//	    "path": "/path/to/src/main/java",
//	    "dry_run": false
//	  }
//	}
//
//	Response:
//	{
//	  "run_id": "6f1c...",
//	  "methods_documented": 42,
//	  "methods_evaluated": 41,
//	  "missing_results": 1,
//	  "average_score": "3.87",
//	  "batches": 9
//	}
//
// With dry_run the methods are scored offline from tag coverage, which
// needs no API key.
//
// # Tool: get_run
//
//	Request:
//	{
//	  "name": "get_run",
//	  "arguments": {"run_id": "6f1c..."}
//	}
//
// The response carries the run record and every stored method with its
// overall score, per-metric scores and recommendations.
//
// # Tool: search_methods
//
//	Request:
//	{
//	  "name": "search_methods",
//	  "arguments": {
//	    "run_id": "6f1c...",
//	    "query": "parse",
//	    "max_score": 3,
//	    "class": "Tokenizer",
//	    "limit": 10
//	  }
//	}
//
// Results are ordered by ascending overall score. The query is matched
// against method name, signature and doc description.
//
// # Error Handling
//
// Handlers return *MCPError values carrying a JSON-RPC code:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: No Java sources under path
//   - -32002: Analysis in progress
//   - -32003: Run not found
//   - -32004: No evaluation provider for a live run
//
// # Logging
//
// The server logs through slog to stderr; stdout is reserved for the
// protocol.
package mcp
