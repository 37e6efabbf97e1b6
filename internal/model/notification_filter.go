package model

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationType restricts the feed by the caller's relationship to the entity
type NotificationType string

const (
	NotificationTypeAll      NotificationType = "all"
	NotificationTypeWatching NotificationType = "watching"
	NotificationTypeAssigned NotificationType = "assigned"
	NotificationTypeCreated  NotificationType = "created"
)

// ParseNotificationType maps a query value to a type. Unknown values mean no restriction.
func ParseNotificationType(raw string) NotificationType {
	switch t := NotificationType(raw); t {
	case NotificationTypeWatching, NotificationTypeAssigned, NotificationTypeCreated:
		return t
	default:
		return NotificationTypeAll
	}
}

// BoolFilter is a tri-state boolean predicate
type BoolFilter int

const (
	BoolAny BoolFilter = iota
	BoolTrue
	BoolFalse
)

// ParseBoolFilter only acts on the literals "true" and "false"; anything else disables the predicate.
func ParseBoolFilter(raw string) BoolFilter {
	switch raw {
	case "true":
		return BoolTrue
	case "false":
		return BoolFalse
	default:
		return BoolAny
	}
}

// SnoozePolicy decides how snoozed=true treats notifications.
//
// SnoozeLenient keeps the feed's long-standing behaviour: snoozed=true does not
// exclude anything, so never-snoozed rows (snoozed_till null) are listed too.
// SnoozeStrict only keeps rows whose snooze is set and already elapsed.
// Switching the default needs product sign-off; it is exposed as configuration.
type SnoozePolicy int

const (
	SnoozeLenient SnoozePolicy = iota
	SnoozeStrict
)

// SortOrder is an allow-listed ordering of the feed
type SortOrder struct {
	Field string
	Desc  bool
}

type sortField struct {
	column  string
	compare func(a, b *Notification) int
}

var sortFields = map[string]sortField{
	"created_at": {
		column:  "created_at",
		compare: func(a, b *Notification) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	"updated_at": {
		column:  "updated_at",
		compare: func(a, b *Notification) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	},
	"read_at": {
		column:  "read_at",
		compare: func(a, b *Notification) int { return compareNullableTime(a.ReadAt, b.ReadAt) },
	},
	"snoozed_till": {
		column:  "snoozed_till",
		compare: func(a, b *Notification) int { return compareNullableTime(a.SnoozedTill, b.SnoozedTill) },
	},
	"archived_at": {
		column:  "archived_at",
		compare: func(a, b *Notification) int { return compareNullableTime(a.ArchivedAt, b.ArchivedAt) },
	},
}

// DefaultSortOrder is newest first
var DefaultSortOrder = SortOrder{Field: "created_at", Desc: true}

// ParseSortOrder accepts "field" or "-field" for allow-listed fields and falls back to DefaultSortOrder.
func ParseSortOrder(raw string) SortOrder {
	raw = strings.TrimSpace(raw)
	desc := strings.HasPrefix(raw, "-")
	field := strings.TrimPrefix(raw, "-")
	if _, ok := sortFields[field]; !ok {
		return DefaultSortOrder
	}
	return SortOrder{Field: field, Desc: desc}
}

func (o SortOrder) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// SQL returns the ORDER BY clause body. Nulls sort as the largest value.
func (o SortOrder) SQL() string {
	f, ok := sortFields[o.Field]
	if !ok {
		f = sortFields[DefaultSortOrder.Field]
	}
	if o.Desc {
		return f.column + " DESC NULLS FIRST, id ASC"
	}
	return f.column + " ASC NULLS LAST, id ASC"
}

// Compare orders two notifications the same way SQL() does
func (o SortOrder) Compare(a, b *Notification) int {
	f, ok := sortFields[o.Field]
	if !ok {
		f = sortFields[DefaultSortOrder.Field]
	}
	c := f.compare(a, b)
	if o.Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

func compareNullableTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// NotificationFilter is the fully resolved predicate set for a feed query
type NotificationFilter struct {
	WorkspaceID  uuid.UUID
	ReceiverID   uuid.UUID
	Now          time.Time
	Snoozed      BoolFilter
	Read         BoolFilter
	Archived     BoolFilter
	SnoozePolicy SnoozePolicy

	// RestrictEntities limits results to EntityIDs; an empty set then matches nothing.
	RestrictEntities bool
	EntityIDs        []uuid.UUID

	Order SortOrder
}

// Matches reports whether n passes every predicate of the filter
func (f *NotificationFilter) Matches(n *Notification) bool {
	if n.WorkspaceID != f.WorkspaceID || n.ReceiverID != f.ReceiverID {
		return false
	}

	switch f.Snoozed {
	case BoolFalse:
		if n.SnoozedTill != nil && n.SnoozedTill.Before(f.Now) {
			return false
		}
	case BoolTrue:
		if f.SnoozePolicy == SnoozeStrict && (n.SnoozedTill == nil || !n.SnoozedTill.Before(f.Now)) {
			return false
		}
	}

	if !matchesNullable(f.Read, n.ReadAt) || !matchesNullable(f.Archived, n.ArchivedAt) {
		return false
	}

	if f.RestrictEntities {
		if n.EntityIdentifier == nil {
			return false
		}
		for _, id := range f.EntityIDs {
			if id == *n.EntityIdentifier {
				return true
			}
		}
		return false
	}

	return true
}

func matchesNullable(b BoolFilter, t *time.Time) bool {
	switch b {
	case BoolTrue:
		return t != nil
	case BoolFalse:
		return t == nil
	default:
		return true
	}
}
