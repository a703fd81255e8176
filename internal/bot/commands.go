package bot

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/WillB97/discord-stat-bot/internal/roster"
	"github.com/WillB97/discord-stat-bot/internal/storage"
	"github.com/bwmarrin/discordgo"
)

// reportOptionDefinitions are the three display toggles shared by the
// report and subscribe commands.
func reportOptionDefinitions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "members",
			Description: "Include the per-team membership listing",
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "warnings",
			Description: "Include the roster anomaly counts",
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "stats",
			Description: "Include aggregate roster statistics",
		},
	}
}

// Slash command definitions
func (b *Bot) getCommandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "report",
			Description: "Post a one-off team roster report",
			Options:     reportOptionDefinitions(),
		},
		{
			Name:        "subscribe",
			Description: "Post a roster report that stays up to date as the roster changes",
			Options:     reportOptionDefinitions(),
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	slog.Info("Registering slash commands")

	commandDefinitions := b.getCommandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(commandDefinitions))

	for _, cmd := range commandDefinitions {
		registered, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			b.config.GuildID,
			cmd,
		)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		registeredCommands = append(registeredCommands, registered)
		slog.Debug("Registered command", "name", cmd.Name)
	}

	b.commands = registeredCommands
	slog.Info("Slash commands registered", "count", len(registeredCommands))
	return nil
}

// removeCommands removes all registered slash commands
func (b *Bot) removeCommands() {
	for _, cmd := range b.commands {
		err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.config.GuildID, cmd.ID)
		if err != nil {
			slog.Error("Failed to remove command", "name", cmd.Name, "error", err)
		}
	}
}

// handleInteraction processes slash command interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	slog.Debug("Received command", "command", data.Name, "guild", i.GuildID)

	if i.Member == nil || !slices.Contains(i.Member.Roles, b.config.AdminRoleID) {
		respondWithMessage(s, i, "You need the admin role to use this command.")
		return
	}

	switch data.Name {
	case "report":
		b.handleReport(s, i)
	case "subscribe":
		b.handleSubscribe(s, i)
	default:
		slog.Warn("Unknown command", "command", data.Name)
	}
}

// parseReportOptions reads the three display toggles from the command
// options; when none is enabled the default selection applies.
func parseReportOptions(data discordgo.ApplicationCommandInteractionData) roster.ReportOptions {
	opts := roster.ReportOptions{}
	for _, o := range data.Options {
		switch o.Name {
		case "members":
			opts.Members = o.BoolValue()
		case "warnings":
			opts.Warnings = o.BoolValue()
		case "stats":
			opts.Stats = o.BoolValue()
		}
	}
	if !opts.Members && !opts.Warnings && !opts.Stats {
		opts = roster.DefaultReportOptions()
	}
	return opts
}

// handleReport handles the /report command
func (b *Bot) handleReport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := parseReportOptions(i.ApplicationCommandData())

	// Respond immediately to avoid timeout while the roster is fetched
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.refreshRoster(); err != nil {
		slog.Error("Failed to refresh roster", "error", err)
		if len(b.snapshot) == 0 {
			b.editResponse(s, i, "The roster could not be read. Please try again.")
			return
		}
		b.editResponse(s, i, "The roster could not be read, showing the last known state.\n"+roster.Compose(b.snapshot, opts))
		return
	}

	b.editResponse(s, i, roster.Compose(b.snapshot, opts))
}

// handleSubscribe handles the /subscribe command
func (b *Bot) handleSubscribe(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := parseReportOptions(i.ApplicationCommandData())

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.refreshRoster(); err != nil {
		slog.Error("Failed to refresh roster", "error", err)
		b.editResponse(s, i, "The roster could not be read. Please try again.")
		return
	}

	msg, err := s.ChannelMessageSend(i.ChannelID, roster.Compose(b.snapshot, opts))
	if err != nil {
		slog.Error("Failed to send report message", "channel", i.ChannelID, "error", err)
		b.editResponse(s, i, "Failed to post the report. Please try again.")
		return
	}

	channelID, err1 := strconv.ParseInt(i.ChannelID, 10, 64)
	messageID, err2 := strconv.ParseInt(msg.ID, 10, 64)
	if err1 != nil || err2 != nil {
		slog.Error("Unexpected non-numeric ID from Discord", "channel", i.ChannelID, "message", msg.ID)
		b.editResponse(s, i, "Report posted, but it could not be subscribed.")
		return
	}

	entry := storage.Entry{
		ChannelID: channelID,
		MessageID: messageID,
		Members:   opts.Members,
		Warnings:  opts.Warnings,
		Stats:     opts.Stats,
	}
	if err := b.store.Add(entry); err != nil {
		slog.Error("Failed to persist subscription", "error", err)
	}

	// The cancel marker doubles as the cancellation control for admins
	if err := s.MessageReactionAdd(i.ChannelID, msg.ID, cancelEmoji); err != nil {
		slog.Warn("Failed to add cancel reaction", "message", msg.ID, "error", err)
	}

	b.editResponse(s, i, fmt.Sprintf("Subscribed. React with %s on the report to cancel it.", cancelEmoji))
}

// Helper functions

func respondWithMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

func (b *Bot) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
}
