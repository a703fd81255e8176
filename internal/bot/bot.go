package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/WillB97/discord-stat-bot/internal/config"
	"github.com/WillB97/discord-stat-bot/internal/refresher"
	"github.com/WillB97/discord-stat-bot/internal/roster"
	"github.com/WillB97/discord-stat-bot/internal/storage"
	"github.com/bwmarrin/discordgo"
)

// cancelEmoji is the reaction marker an admin adds to a subscribed
// message to cancel its live updates.
const cancelEmoji = "❌"

// Bot represents the Discord bot instance
type Bot struct {
	config    *config.Config
	session   *discordgo.Session
	store     *storage.Store
	refresher *refresher.Refresher
	commands  []*discordgo.ApplicationCommand

	// mu serializes all event handling; discordgo dispatches each event
	// on its own goroutine, and both the snapshot and the store assume a
	// single writer.
	mu       sync.Mutex
	snapshot roster.Snapshot
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions

	// Initialize the subscription store
	store, err := storage.NewStore(cfg.SubscriptionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := store.Load(); err != nil {
		slog.Warn("Failed to persist subscription baseline", "error", err)
	}

	b := &Bot{
		config:  cfg,
		session: session,
		store:   store,
	}

	// Register event handlers
	b.registerHandlers()

	return b, nil
}

// Start opens the Discord connection and starts background tasks
func (b *Bot) Start(ctx context.Context) error {
	// Open Discord connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)

	// Register slash commands
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	// Start the background refresher
	b.refresher = refresher.New(b, b.config.RefreshIntervalSeconds)
	go b.refresher.Start(ctx)

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	// Stop the refresher
	if b.refresher != nil {
		b.refresher.Stop()
	}

	// Remove registered commands (optional - comment out to keep commands)
	// b.removeCommands()

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleMemberUpdate)
	b.session.AddHandler(b.handleReactionAdd)
}

// handleReady builds the initial snapshot once the gateway is up
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("Bot is ready", "guilds", len(r.Guilds))

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.refreshRoster(); err != nil {
		slog.Error("Failed to build initial roster snapshot", "error", err)
	}
}

// handleMemberUpdate rebuilds the snapshot and pushes fresh content to
// every subscribed message whenever a member's roles change
func (b *Bot) handleMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.GuildID != b.config.GuildID {
		return
	}
	slog.Debug("Member update received", "user", m.User.ID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.refreshRoster(); err != nil {
		slog.Error("Failed to refresh roster", "error", err)
		return
	}
	b.reconcile()
}

// handleReactionAdd cancels a subscription when an authorized user adds
// the cancel marker to a subscribed message
func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID != b.config.GuildID || r.UserID == s.State.User.ID {
		return
	}
	if r.Emoji.Name != cancelEmoji {
		return
	}

	channelID, err1 := strconv.ParseInt(r.ChannelID, 10, 64)
	messageID, err2 := strconv.ParseInt(r.MessageID, 10, 64)
	if err1 != nil || err2 != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.subscribed(channelID, messageID) {
		return
	}

	if !b.isAuthorized(r.UserID, r.Member) {
		slog.Debug("Ignoring cancel reaction from unauthorized user", "user", r.UserID)
		return
	}

	slog.Info("Cancelling subscription", "channel", r.ChannelID, "message", r.MessageID, "user", r.UserID)

	if err := b.session.ChannelMessageDelete(r.ChannelID, r.MessageID); err != nil {
		slog.Error("Failed to delete subscribed message", "message", r.MessageID, "error", err)
	}
	if err := b.store.Remove(channelID, messageID); err != nil {
		slog.Error("Failed to persist subscription removal", "error", err)
	}
}

// subscribed reports whether the store holds an entry for this identity
func (b *Bot) subscribed(channelID, messageID int64) bool {
	for _, e := range b.store.Entries() {
		if e.ChannelID == channelID && e.MessageID == messageID {
			return true
		}
	}
	return false
}

// isAuthorized reports whether the user may cancel subscriptions: the
// guild owner or any holder of the configured admin role
func (b *Bot) isAuthorized(userID string, member *discordgo.Member) bool {
	if guild, err := b.session.State.Guild(b.config.GuildID); err == nil && guild.OwnerID == userID {
		return true
	}
	if member == nil {
		var err error
		member, err = b.session.GuildMember(b.config.GuildID, userID)
		if err != nil {
			slog.Warn("Failed to fetch member for authorization", "user", userID, "error", err)
			return false
		}
	}
	return slices.Contains(member.Roles, b.config.AdminRoleID)
}

// refreshRoster rebuilds the snapshot from the guild's roles and members.
// On any enumeration failure the previous snapshot is retained. The
// caller must hold b.mu.
func (b *Bot) refreshRoster() error {
	roles, err := b.fetchRoleMemberships()
	if err != nil {
		return err
	}
	b.snapshot = roster.Build(roles, b.config.TeamRolePrefix)
	slog.Debug("Roster snapshot rebuilt", "teams", len(b.snapshot))
	return nil
}

// fetchRoleMemberships enumerates the guild's roles and members and joins
// them into the builder's input form
func (b *Bot) fetchRoleMemberships() ([]roster.RoleMembership, error) {
	roles, err := b.session.GuildRoles(b.config.GuildID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing roles: %v", roster.ErrSourceUnavailable, err)
	}

	members, err := b.fetchAllMembers()
	if err != nil {
		return nil, err
	}

	memberships := make([]roster.RoleMembership, 0, len(roles))
	for _, role := range roles {
		// @everyone shares its ID with the guild and can never encode a team
		if role.ID == b.config.GuildID {
			continue
		}
		rm := roster.RoleMembership{Name: role.Name}
		for _, m := range members {
			if !slices.Contains(m.Roles, role.ID) {
				continue
			}
			rm.Members = append(rm.Members, roster.RoleMember{
				ID:       m.User.ID,
				IsLeader: slices.Contains(m.Roles, b.config.LeaderRoleID),
			})
		}
		memberships = append(memberships, rm)
	}
	return memberships, nil
}

// fetchAllMembers pages through the guild member list
func (b *Bot) fetchAllMembers() ([]*discordgo.Member, error) {
	var members []*discordgo.Member
	after := ""
	for {
		page, err := b.session.GuildMembers(b.config.GuildID, after, 1000)
		if err != nil {
			return nil, fmt.Errorf("%w: listing members: %v", roster.ErrSourceUnavailable, err)
		}
		members = append(members, page...)
		if len(page) < 1000 {
			return members, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// RefreshAndReconcile rebuilds the snapshot and pushes fresh content to
// every subscribed message. It is the refresher's entry point.
func (b *Bot) RefreshAndReconcile(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.refreshRoster(); err != nil {
		if errors.Is(err, roster.ErrSourceUnavailable) {
			slog.Warn("Roster source unavailable, keeping previous snapshot", "error", err)
			return nil
		}
		return err
	}
	b.reconcile()
	return nil
}

// reconcile pushes the current snapshot to all subscriptions. The caller
// must hold b.mu.
func (b *Bot) reconcile() {
	reconcile(b.session, b.store, b.snapshot)
}
