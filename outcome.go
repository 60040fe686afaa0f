package invitekit

import (
	"fmt"
	"time"

	"github.com/gotd/td/tgerr"
)

// OutcomeKind enumerates the classified results of a single invite call.
type OutcomeKind int

const (
	// Added means the user was added to the channel.
	Added OutcomeKind = iota

	// AlreadyMember means the user is already a channel participant.
	AlreadyMember

	// PrivacyRestricted means the user's privacy settings block the add.
	PrivacyRestricted

	// NotFound means the user could not be resolved.
	NotFound

	// RateLimited means the server demanded a cooldown before further
	// requests; Wait carries the requested duration.
	RateLimited

	// OtherError covers every remaining failure; Detail carries the
	// classification.
	OtherError
)

// Outcome is the result of one invite call against the Telegram API.
type Outcome struct {
	Kind   OutcomeKind
	Wait   time.Duration // set when Kind is RateLimited
	Detail string        // set when Kind is OtherError
}

// Status maps the outcome to the recorded attempt status.
func (o Outcome) Status() Status {
	if o.Kind == Added {
		return StatusSuccess
	}
	return StatusFailed
}

// Reason returns the free-text classification written to the results file.
func (o Outcome) Reason() string {
	switch o.Kind {
	case Added:
		return "added"
	case AlreadyMember:
		return "AlreadyParticipant"
	case PrivacyRestricted:
		return "UserPrivacyRestricted"
	case NotFound:
		return "UserNotFound"
	case RateLimited:
		return fmt.Sprintf("FloodWait_%ds", int(o.Wait.Seconds()))
	default:
		return o.Detail
	}
}

// classifyInviteError maps a channels.inviteToChannel error to an Outcome.
func classifyInviteError(err error) Outcome {
	if err == nil {
		return Outcome{Kind: Added}
	}

	if wait, ok := tgerr.AsFloodWait(err); ok {
		return Outcome{Kind: RateLimited, Wait: wait}
	}

	switch {
	case tgerr.Is(err, "USER_ALREADY_PARTICIPANT"):
		return Outcome{Kind: AlreadyMember}
	case tgerr.Is(err, "USER_PRIVACY_RESTRICTED"):
		return Outcome{Kind: PrivacyRestricted}
	case tgerr.Is(err, "USER_ID_INVALID"), tgerr.Is(err, "USERNAME_NOT_OCCUPIED"):
		return Outcome{Kind: NotFound}
	case tgerr.Is(err, "USER_NOT_MUTUAL_CONTACT"):
		return Outcome{Kind: OtherError, Detail: "NotMutualContact"}
	case tgerr.Is(err, "USER_CHANNELS_TOO_MUCH"):
		return Outcome{Kind: OtherError, Detail: "ChannelsTooMuch"}
	case tgerr.Is(err, "USER_KICKED"):
		return Outcome{Kind: OtherError, Detail: "UserKicked"}
	case tgerr.Is(err, "INPUT_USER_DEACTIVATED"):
		return Outcome{Kind: OtherError, Detail: "UserDeactivated"}
	case tgerr.Is(err, "PEER_FLOOD"):
		return Outcome{Kind: OtherError, Detail: "PeerFlood"}
	}

	if rpcErr, ok := tgerr.As(err); ok {
		return Outcome{Kind: OtherError, Detail: rpcErr.Type}
	}
	return Outcome{Kind: OtherError, Detail: truncate(err.Error(), 50)}
}

// truncate caps s at n runes without splitting a multibyte character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
