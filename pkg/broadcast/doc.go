// Package broadcast provides a small generic pub/sub primitive for fanning
// messages out to in-process subscribers.
//
// MemoryBroadcaster never blocks the sender: every subscriber owns a buffered
// channel and a message that does not fit is dropped for that subscriber only.
// Subscriptions end when their context is cancelled, when the subscriber is
// closed, or when the broadcaster itself is closed.
//
// kvstore.MemoryStore uses it to announce key changes to session managers
// sharing the same store:
//
//	b := broadcast.NewMemoryBroadcaster[kvstore.Change](16)
//	sub := b.Subscribe(ctx)
//	for msg := range sub.Receive(ctx) {
//	    fmt.Println(msg.Data.Key)
//	}
package broadcast
