package banner

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const banner = `
████████╗██╗  ██╗██████╗ ███████╗ █████╗ ██████╗ ███████╗██╗   ██╗███╗   ██╗ ██████╗
╚══██╔══╝██║  ██║██╔══██╗██╔════╝██╔══██╗██╔══██╗██╔════╝╚██╗ ██╔╝████╗  ██║██╔════╝
   ██║   ███████║██████╔╝█████╗  ███████║██║  ██║███████╗ ╚████╔╝ ██╔██╗ ██║██║
   ██║   ██╔══██║██╔══██╗██╔══╝  ██╔══██║██║  ██║╚════██║  ╚██╔╝  ██║╚██╗██║██║
   ██║   ██║  ██║██║  ██║███████╗██║  ██║██████╔╝███████║   ██║   ██║ ╚████║╚██████╗
   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═════╝ ╚══════╝   ╚═╝   ╚═╝  ╚═══╝ ╚═════╝
`

// Print writes the startup banner with the effective runtime settings.
func Print(addr, dbPath, remoteURL, sources, version string, dbSize uint64) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("Mirror:   %s (%s)\n", dbPath, humanize.Bytes(dbSize))
	fmt.Printf("Remote:   %s\n", remoteURL)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET    /v1/conversations - Conversations with persisted local messages")
	fmt.Println("GET    /v1/conversations/{id}/messages - Fetch, merge and return the thread")
	fmt.Println("POST   /v1/conversations/{id}/messages - Send (optimistic) {\"text\": ...}")
	fmt.Println("DELETE /v1/conversations/{id}/messages/{msgID} - Delete a message")
	fmt.Println("GET    /v1/conversations/{id}/error - Latest reconciliation error")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl 'http://%s/v1/conversations/alice/messages'\n", addr)
	fmt.Printf("curl -X POST 'http://%s/v1/conversations/alice/messages' -d '{\"text\": \"hello\"}'\n", addr)
}
