// internal/app/system/realtime/events.go
package realtime

// Event names pushed to connected clients. These are part of the client
// contract; renaming one breaks deployed clients.
const (
	EventTaskUpdated    = "task-updated"
	EventProjectUpdated = "project-updated"
	EventTaskAssigned   = "task-assigned"
	EventNewComment     = "new-comment"
	EventMemberAdded    = "member-added"
	EventMemberRemoved  = "member-removed"
	EventNotification   = "notification"
)

// envelope is the wire format for server-pushed events.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// clientMessage is what clients send: room management only.
type clientMessage struct {
	Action  string `json:"action"`  // join-project | leave-project
	Project string `json:"project"` // project ID hex
}
