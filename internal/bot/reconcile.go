package bot

import (
	"errors"
	"log/slog"

	"github.com/WillB97/discord-stat-bot/internal/roster"
	"github.com/WillB97/discord-stat-bot/internal/storage"
	"github.com/bwmarrin/discordgo"
)

var errUnsupportedChannel = errors.New("subscribed channel is not a guild text channel")

// messenger is the slice of discordgo.Session the reconciliation loop
// needs, narrow enough to fake in tests.
type messenger interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// reconcile re-renders every subscribed message against the given
// snapshot and edits it in place. Entries whose channel or message can no
// longer be resolved are pruned from the store. A failure on one entry
// never prevents the remaining entries from being updated.
func reconcile(m messenger, store *storage.Store, snap roster.Snapshot) {
	for _, e := range store.Entries() {
		content := roster.Compose(snap, roster.ReportOptions{
			Members:  e.Members,
			Warnings: e.Warnings,
			Stats:    e.Stats,
		})

		if err := editSubscribed(m, e, content); err != nil {
			slog.Warn("Pruning unresolvable subscription",
				"channel", e.ChannelString(), "message", e.MessageString(), "error", err)
			if err := store.Remove(e.ChannelID, e.MessageID); err != nil {
				slog.Error("Failed to persist subscription removal", "error", err)
			}
			continue
		}

		slog.Debug("Updated subscribed message",
			"channel", e.ChannelString(), "message", e.MessageString())
	}
}

// editSubscribed resolves the entry's channel and message and edits the
// message content in place.
func editSubscribed(m messenger, e storage.Entry, content string) error {
	channel, err := m.Channel(e.ChannelString())
	if err != nil {
		return err
	}
	if channel.Type != discordgo.ChannelTypeGuildText {
		return errUnsupportedChannel
	}
	if _, err := m.ChannelMessage(e.ChannelString(), e.MessageString()); err != nil {
		return err
	}
	_, err = m.ChannelMessageEdit(e.ChannelString(), e.MessageString(), content)
	return err
}
