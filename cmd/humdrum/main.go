// Command humdrum runs a humdrum site from the command line, over HTTP or as
// an MCP server.
package main

func main() {
	Execute()
}
