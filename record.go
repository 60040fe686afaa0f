package invitekit

import (
	"strconv"
	"strings"
	"time"
)

// UserRecord identifies a user to invite. Either ID or Username must be
// set; ID wins when both are present.
type UserRecord struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Key returns the deduplication key: the numeric ID when present,
// otherwise the username.
func (u UserRecord) Key() string {
	if u.ID != 0 {
		return strconv.FormatInt(u.ID, 10)
	}
	return strings.TrimPrefix(u.Username, "@")
}

// DisplayName returns a human-readable label for log output.
func (u UserRecord) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

// Status is the final disposition of a single invite attempt.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
	StatusDryRun  Status = "DryRun"
)

// AttemptResult records the outcome of one invite attempt. Results are
// created once per unique input record and never mutated.
type AttemptResult struct {
	User      UserRecord
	Status    Status
	Reason    string
	Timestamp time.Time
}

// DedupUsers returns records unique by Key, preserving input order.
// Records with neither an ID nor a username are dropped.
func DedupUsers(users []UserRecord) []UserRecord {
	seen := make(map[string]struct{}, len(users))
	out := make([]UserRecord, 0, len(users))
	for _, u := range users {
		key := u.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}
