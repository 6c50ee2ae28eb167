// Package events implements the lifecycle notifications that drive
// tracked-set creation and teardown: task_init_priv (a task, or thread,
// has started) and task_exit (one has ended). Both arrive as a JSON
// envelope {"event": "<name>", "data": {...}} from whatever stream or
// replay source is feeding the sampler.
package events

// Kind names the two lifecycle events this package understands. Any
// other event name is ignored by Dispatch.
type Kind string

const (
	TaskInitPriv Kind = "task_init_priv"
	TaskExit     Kind = "task_exit"
)

// envelope mirrors the {"event", "data"} wire shape; data is kept raw
// so each handler can pull only the fields it needs via jsonparser.
type envelope struct {
	Event string `json:"event"`
}
