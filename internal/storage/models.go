package storage

import "strconv"

// Entry records a subscribed report message and the display options it
// was rendered with. Identity is the (ChannelID, MessageID) pair; at most
// one entry per identity exists in the store.
type Entry struct {
	ChannelID int64 `json:"channel_id"`
	MessageID int64 `json:"message_id"`
	Members   bool  `json:"members"`
	Warnings  bool  `json:"warnings"`
	Stats     bool  `json:"stats"`
}

// ChannelString returns the channel ID in Discord's snowflake form.
func (e Entry) ChannelString() string {
	return strconv.FormatInt(e.ChannelID, 10)
}

// MessageString returns the message ID in Discord's snowflake form.
func (e Entry) MessageString() string {
	return strconv.FormatInt(e.MessageID, 10)
}
