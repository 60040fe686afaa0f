package invitekit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// Client is the Telegram channel membership client. It owns the MTProto
// connection, the authorized session and the resolved target channel.
type Client struct {
	cfg    Config
	client *telegram.Client
	api    *tg.Client

	channel *tg.InputChannel
	title   string

	running atomic.Bool
	selfID  int64

	// Seams for tests: runBackend drives the MTProto connection,
	// setup authorizes and resolves the channel.
	runBackend func(ctx context.Context, fn func(ctx context.Context) error) error
	setup      func(ctx context.Context) error
}

// NewClient creates a Client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.SessionDir, 0700); err != nil {
		return nil, err
	}

	sessionStorage := &session.FileStorage{
		Path: filepath.Join(cfg.SessionDir, "session"),
	}

	client := telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		Logger: cfg.zapLogger(),
		Device: telegram.DeviceConfig{
			DeviceModel: cfg.DeviceModel,
			AppVersion:  cfg.AppVersion,
		},
		SessionStorage: sessionStorage,
	})

	c := &Client{cfg: cfg, client: client}
	c.runBackend = client.Run
	c.setup = c.connect
	return c, nil
}

// Run connects, authorizes the session and resolves the target channel,
// then calls fn with the live connection. Authorization or channel
// resolution failure is fatal: fn is never called.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	return c.runBackend(ctx, func(ctx context.Context) error {
		if err := c.setup(ctx); err != nil {
			return err
		}
		return fn(ctx)
	})
}

// connect authorizes the session and resolves the target channel.
func (c *Client) connect(ctx context.Context) error {
	flow := auth.NewFlow(newTerminalAuth(c.cfg.Phone), auth.SendCodeOptions{})
	if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
		return fmt.Errorf("authorize: %w", err)
	}

	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("auth status: %w", err)
	}
	if !status.Authorized {
		return ErrNotAuthorized
	}

	self, err := c.client.Self(ctx)
	if err != nil {
		return fmt.Errorf("self: %w", err)
	}
	c.selfID = self.ID
	c.api = tg.NewClient(c.client)

	channel, err := c.resolveChannel(ctx, c.cfg.Channel)
	if err != nil {
		return fmt.Errorf("resolve channel %q: %w", c.cfg.Channel, err)
	}
	c.channel = &tg.InputChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}
	c.title = channel.Title

	c.cfg.Logger.Info("connected",
		"self_id", self.ID,
		"channel", channel.Title)

	return nil
}

// SelfID returns the authorized account's user ID.
func (c *Client) SelfID() int64 {
	return c.selfID
}

// ChannelTitle returns the resolved channel title. Empty until Run has
// connected.
func (c *Client) ChannelTitle() string {
	return c.title
}

// API returns the raw tg.Client for advanced operations.
func (c *Client) API() *tg.Client {
	return c.api
}

// AddUser resolves the record to a Telegram user and invites it to the
// target channel. Every failure maps to an Outcome so the caller can
// record it and continue; AddUser itself never aborts the run.
func (c *Client) AddUser(ctx context.Context, u UserRecord) Outcome {
	if c.api == nil || c.channel == nil {
		return Outcome{Kind: OtherError, Detail: ErrNotConnected.Error()}
	}

	user, err := c.resolveUser(ctx, u)
	if err != nil {
		if wait, ok := tgerr.AsFloodWait(err); ok {
			return Outcome{Kind: RateLimited, Wait: wait}
		}
		return Outcome{Kind: NotFound}
	}

	if out, done := participantCheckOutcome(c.checkParticipant(ctx, user)); done {
		return out
	}

	_, err = c.api.ChannelsInviteToChannel(ctx, &tg.ChannelsInviteToChannelRequest{
		Channel: c.channel,
		Users:   []tg.InputUserClass{user},
	})
	return classifyInviteError(err)
}

// resolveUser resolves a record to an input user, trying the username
// first and falling back to the numeric ID. A flood wait is propagated
// so the loop can honor it; anything else means the user is not
// reachable from this account.
func (c *Client) resolveUser(ctx context.Context, u UserRecord) (*tg.InputUser, error) {
	if name := strings.TrimPrefix(strings.TrimSpace(u.Username), "@"); name != "" {
		resolved, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: name})
		if err == nil {
			for _, usr := range resolved.Users {
				if user, ok := usr.(*tg.User); ok {
					return &tg.InputUser{UserID: user.ID, AccessHash: user.AccessHash}, nil
				}
			}
		} else if _, ok := tgerr.AsFloodWait(err); ok {
			return nil, err
		}
		// Username did not resolve, try the ID.
	}

	if u.ID != 0 {
		users, err := c.api.UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUser{UserID: u.ID}})
		if err != nil {
			return nil, err
		}
		for _, usr := range users {
			if user, ok := usr.(*tg.User); ok && user.ID == u.ID {
				return &tg.InputUser{UserID: user.ID, AccessHash: user.AccessHash}, nil
			}
		}
	}

	return nil, fmt.Errorf("user %s not found", u.Key())
}

// checkParticipant asks whether the user is already in the channel.
func (c *Client) checkParticipant(ctx context.Context, user *tg.InputUser) error {
	_, err := c.api.ChannelsGetParticipant(ctx, &tg.ChannelsGetParticipantRequest{
		Channel:     c.channel,
		Participant: &tg.InputPeerUser{UserID: user.UserID, AccessHash: user.AccessHash},
	})
	return err
}

// participantCheckOutcome maps the channels.getParticipant result:
// success means the user is already a member, a flood wait is honored
// before the invite is even attempted, and any other error (including
// USER_NOT_PARTICIPANT) falls through to the invite, which gives the
// authoritative answer.
func participantCheckOutcome(err error) (Outcome, bool) {
	if err == nil {
		return Outcome{Kind: AlreadyMember}, true
	}
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return Outcome{Kind: RateLimited, Wait: wait}, true
	}
	return Outcome{}, false
}

// resolveChannel resolves the configured channel reference: a public
// @username (or t.me link) via contacts.resolveUsername, or a numeric
// ID by scanning the account's dialogs for the access hash.
func (c *Client) resolveChannel(ctx context.Context, ref string) (*tg.Channel, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "https://t.me/")

	if id, ok := parseChannelID(ref); ok {
		input, err := c.findDialogChannel(ctx, id)
		if err != nil {
			return nil, err
		}
		return c.getChannel(ctx, input)
	}

	name := strings.TrimPrefix(ref, "@")
	resolved, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: name})
	if err != nil {
		return nil, err
	}
	for _, chat := range resolved.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			return ch, nil
		}
	}
	return nil, ErrChannelNotFound
}

// parseChannelID parses a fully numeric channel reference, accepting
// both bare IDs and the -100-prefixed form.
func parseChannelID(ref string) (int64, bool) {
	if ref == "" || strings.TrimLeft(ref, "-0123456789") != "" {
		return 0, false
	}
	raw := strings.TrimPrefix(ref, "-100")
	raw = strings.TrimPrefix(raw, "-")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var errChannelFound = errors.New("channel found")

// findDialogChannel walks the account's dialogs looking for a channel
// with the given ID, recovering its access hash.
func (c *Client) findDialogChannel(ctx context.Context, id int64) (*tg.InputChannel, error) {
	var found *tg.InputChannel
	err := query.GetDialogs(c.api).BatchSize(100).ForEach(ctx, func(_ context.Context, elem dialogs.Elem) error {
		if p, ok := elem.Peer.(*tg.InputPeerChannel); ok && p.ChannelID == id {
			found = &tg.InputChannel{ChannelID: p.ChannelID, AccessHash: p.AccessHash}
			return errChannelFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errChannelFound) {
		return nil, err
	}
	if found == nil {
		return nil, ErrChannelNotFound
	}
	return found, nil
}

func (c *Client) getChannel(ctx context.Context, input *tg.InputChannel) (*tg.Channel, error) {
	chats, err := c.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{input})
	if err != nil {
		return nil, err
	}
	for _, chat := range chats.GetChats() {
		if ch, ok := chat.(*tg.Channel); ok && ch.ID == input.ChannelID {
			return ch, nil
		}
	}
	return nil, ErrChannelNotFound
}
