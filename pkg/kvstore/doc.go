// Package kvstore defines the string key-value storage tiers a session is
// persisted in and ships the implementations used by moodlog.
//
// A Store is a flat get/set/remove map. Stores that can observe writes made
// by other handles of the same storage also implement Watcher, which streams
// a Change per mutated key. Writers tag their mutations with WithOrigin so a
// watcher can tell its own writes from foreign ones.
//
// Implementations:
//
//   - MemoryStore – process-lifetime map, the ephemeral tier. With
//     WithChangeNotifications it fans changes out through the broadcast
//     package to every watcher in the process.
//   - FileStore – YAML file replaced atomically on every write, the durable
//     tier for a single machine. Writers from any process serialize on a
//     sibling ".lock" file (github.com/gofrs/flock). Watch follows the file
//     with fsnotify.
//   - redis.Storage (package pkg/redis) – shared durable tier backed by Redis
//     with Pub/Sub change notifications.
//
// # Usage
//
//	ephemeral := kvstore.NewMemoryStore()
//	durable, err := kvstore.NewFileStore(filepath.Join(configDir, "moodlog", "session.yaml"))
//	if err != nil {
//	    return err
//	}
//	_ = durable.Set(kvstore.WithOrigin(ctx, managerID), "auth_token", token)
package kvstore
