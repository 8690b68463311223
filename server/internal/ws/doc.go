// Package ws implements the WebSocket hub that tells open availability pages
// when the sheet cache has been refreshed.
//
// New() creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all active
// connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket and sends a hello
// message. Hub.Broadcast fans a message out to every connected client.
//
// Message format sent to clients:
//
//	{
//	  "event": "refresh",
//	  "at":    "2024-05-01T10:00:00Z",
//	  "tiers": [{"priority": "Top", "count": 12}, ...]
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/stream by the server.
package ws
