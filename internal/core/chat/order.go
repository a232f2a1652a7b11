package chat

import (
	"sort"
)

// SortOrder is how a view lays out messages by server timestamp
type SortOrder int

const (
	// Ascending is used by the client chat screen: oldest first
	Ascending SortOrder = iota
	// Descending is used by the support console, which renders an inverted list
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ParseSortOrder accepts "asc"/"desc"; anything else falls back to def
func ParseSortOrder(s string, def SortOrder) SortOrder {
	switch s {
	case "asc":
		return Ascending
	case "desc":
		return Descending
	default:
		return def
	}
}

// Order flattens a pushed id→message mapping into a slice sorted by timestamp, ties by id
func Order(snapshot map[string]Message, order SortOrder) []Message {
	out := make([]Message, 0, len(snapshot))
	for id, m := range snapshot {
		if m.ID == "" {
			m.ID = id
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Timestamp == b.Timestamp {
			if order == Descending {
				return a.ID > b.ID
			}
			return a.ID < b.ID
		}
		if order == Descending {
			return a.Timestamp > b.Timestamp
		}
		return a.Timestamp < b.Timestamp
	})
	return out
}

// lastMessage is the newest message of a snapshot, nil when empty
func lastMessage(snapshot map[string]Message) *Message {
	ordered := Order(snapshot, Descending)
	if len(ordered) == 0 {
		return nil
	}
	m := ordered[0]
	return &m
}

// sortConversations puts the most recently active thread first; silent threads go last by key
func sortConversations(convs []Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i].LastMessage, convs[j].LastMessage
		switch {
		case a != nil && b != nil && a.Timestamp != b.Timestamp:
			return a.Timestamp > b.Timestamp
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return convs[i].Key < convs[j].Key
	})
}
