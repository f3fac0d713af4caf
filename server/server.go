package server

import (
	"net/http"

	"github.com/lexandro/davsearch-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	searchHandler *tools.SearchHandler,
	filesHandler *tools.FilesHandler,
	readHandler *tools.ReadHandler,
	statusHandler *tools.StatusHandler,
	refreshHandler *tools.RefreshHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "davsearch-mcp",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server searches a remote WebDAV file store (Nextcloud, ownCloud and similar) by file name, text content and file metadata.

- Use search_files to find documents by words in their name, content, type, size class, year or folder
- Use list_files to browse a folder with a glob pattern
- Use read_file to read a text file found by search_files
- Searches from the root are shallow by default; pass basePath to search deeper inside one folder
- Listings are cached for 15 minutes; call refresh_index after files change outside this server`,
		},
	)

	// Register search_files tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "search_files",
		Description: `Search files by name, content and metadata. Results are ranked 0-100 and deduplicated by path.

Scopes (searchIn):
  - filename: words in the file name (default)
  - content: words inside text, code and config files up to 10 MB (default)
  - metadata: file type, size class (tiny, small, medium, large), year and folder names

Filtering:
  - basePath: folder to search below (e.g. "/Documents/Taxes")
  - fileTypes: extension allow-list (e.g. ["pdf", "docx"])
  - minSize / maxSize in bytes, modifiedAfter / modifiedBefore as YYYY-MM-DD

If the store is too slow to walk, only the top folder is searched and the output says so.`,
	}, searchHandler.Handle)

	// Register list_files tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "list_files",
		Description: `List files below a folder by glob pattern, with type, size and age.

Pattern examples:
  - "**/*.pdf" - all PDFs
  - "Invoices/**" - everything under Invoices/
  - "*.md" - markdown files directly in basePath`,
	}, filesHandler.Handle)

	// Register read_file tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "read_file",
		Description: `Read a text file from the store. Returns numbered lines (format: "N│ content"). Binary files, documents such as PDF and files above the size limit are refused.`,
	}, readHandler.Handle)

	// Register index_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "index_status",
		Description: "Show cached folder indexes, content and result cache usage, memory usage and uptime.",
	}, statusHandler.Handle)

	// Register refresh_index tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "refresh_index",
		Description: "Drop cached listings and content for a changed path, or every cache when no path is given. The next search re-reads the store.",
	}, refreshHandler.Handle)

	return mcpServer
}

// HTTPHandler serves mcpServer over the streamable HTTP transport.
func HTTPHandler(mcpServer *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return mcpServer
	}, nil)
}
