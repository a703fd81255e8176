package bot

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/WillB97/discord-stat-bot/internal/roster"
	"github.com/WillB97/discord-stat-bot/internal/storage"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessenger fakes the message operations reconcile performs.
type fakeMessenger struct {
	channelType    map[string]discordgo.ChannelType
	failChannel    map[string]bool
	failMessage    map[string]bool
	failEdit       map[string]bool
	editedContents map[string]string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		channelType:    map[string]discordgo.ChannelType{},
		failChannel:    map[string]bool{},
		failMessage:    map[string]bool{},
		failEdit:       map[string]bool{},
		editedContents: map[string]string{},
	}
}

func (f *fakeMessenger) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.failChannel[channelID] {
		return nil, errors.New("unknown channel")
	}
	chType := discordgo.ChannelTypeGuildText
	if t, ok := f.channelType[channelID]; ok {
		chType = t
	}
	return &discordgo.Channel{ID: channelID, Type: chType}, nil
}

func (f *fakeMessenger) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.failMessage[messageID] {
		return nil, errors.New("unknown message")
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeMessenger) ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.failEdit[messageID] {
		return nil, errors.New("edit rejected")
	}
	f.editedContents[messageID] = content
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func newTestStore(t *testing.T, entries ...storage.Entry) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "subscriptions.json"))
	require.NoError(t, err)
	require.NoError(t, store.Load())
	for _, e := range entries {
		require.NoError(t, store.Add(e))
	}
	return store
}

func TestReconcile(t *testing.T) {
	snap := roster.Snapshot{
		{Code: "ROB1", School: "ROB", Index: 1, Members: 4, HasLeader: true},
		{Code: "ROB2", School: "ROB", Index: 2, Members: 2, HasLeader: false},
	}
	first := storage.Entry{ChannelID: 10, MessageID: 11, Members: true, Warnings: true}
	second := storage.Entry{ChannelID: 20, MessageID: 21, Members: true, Stats: true}

	t.Run("edits every subscribed message with fresh content", func(t *testing.T) {
		store := newTestStore(t, first, second)
		m := newFakeMessenger()

		reconcile(m, store, snap)

		assert.Len(t, store.Entries(), 2)
		assert.Equal(t,
			roster.Compose(snap, roster.ReportOptions{Members: true, Warnings: true}),
			m.editedContents["11"])
		assert.Equal(t,
			roster.Compose(snap, roster.ReportOptions{Members: true, Stats: true}),
			m.editedContents["21"])
	})

	t.Run("a failed fetch prunes the entry and the rest still update", func(t *testing.T) {
		store := newTestStore(t, first, second)
		m := newFakeMessenger()
		m.failMessage["11"] = true

		reconcile(m, store, snap)

		entries := store.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, second, entries[0])
		assert.Contains(t, m.editedContents, "21")
		assert.NotContains(t, m.editedContents, "11")
	})

	t.Run("an unresolvable channel prunes the entry", func(t *testing.T) {
		store := newTestStore(t, first)
		m := newFakeMessenger()
		m.failChannel["10"] = true

		reconcile(m, store, snap)

		assert.Empty(t, store.Entries())
	})

	t.Run("an unsupported channel kind prunes the entry", func(t *testing.T) {
		store := newTestStore(t, first)
		m := newFakeMessenger()
		m.channelType["10"] = discordgo.ChannelTypeGuildVoice

		reconcile(m, store, snap)

		assert.Empty(t, store.Entries())
	})

	t.Run("a rejected edit prunes the entry", func(t *testing.T) {
		store := newTestStore(t, first)
		m := newFakeMessenger()
		m.failEdit["11"] = true

		reconcile(m, store, snap)

		assert.Empty(t, store.Entries())
	})
}
