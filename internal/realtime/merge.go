package realtime

import "time"

// Mergeable is implemented by cached rows that can be reconciled with
// feed snapshots: a stable identity plus a monotonic version timestamp.
type Mergeable interface {
	EntityKey() string
	EntityVersion() time.Time
}

// Merge reconciles a local cache snapshot with rows received from the
// change feed. Rows are keyed by identity; when both sides hold a key the
// later version wins, with the remote side winning ties (the store is
// authoritative). Local order is preserved; unseen remote rows append in
// feed order. The inputs are never mutated.
func Merge[T Mergeable](local, remote []T) []T {
	byKey := make(map[string]T, len(remote))
	for _, row := range remote {
		current, ok := byKey[row.EntityKey()]
		if ok && current.EntityVersion().After(row.EntityVersion()) {
			continue
		}
		byKey[row.EntityKey()] = row
	}

	merged := make([]T, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local))

	for _, row := range local {
		key := row.EntityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if incoming, ok := byKey[key]; ok && !row.EntityVersion().After(incoming.EntityVersion()) {
			merged = append(merged, incoming)
			continue
		}
		merged = append(merged, row)
	}

	for _, row := range remote {
		key := row.EntityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, byKey[key])
	}

	return merged
}

// Remove drops a row by key, for delete events.
func Remove[T Mergeable](local []T, key string) []T {
	result := make([]T, 0, len(local))
	for _, row := range local {
		if row.EntityKey() == key {
			continue
		}
		result = append(result, row)
	}
	return result
}
