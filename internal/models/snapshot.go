package models

// UnreadSnapshot is the server-provided unread_msgs payload used to seed
// the unread counters at session start.
type UnreadSnapshot struct {
	PMs      []UnreadPM     `json:"pms"`
	Huddles  []UnreadHuddle `json:"huddles"`
	Streams  []UnreadStream `json:"streams"`
	Mentions []MessageID    `json:"mentions"`
}

// UnreadPM lists unread one-on-one messages from a sender.
type UnreadPM struct {
	SenderID         UserID      `json:"sender_id"`
	UnreadMessageIDs []MessageID `json:"unread_message_ids"`
}

// UnreadHuddle lists unread group private messages for a participant set.
type UnreadHuddle struct {
	UserIDsString    string      `json:"user_ids_string"`
	UnreadMessageIDs []MessageID `json:"unread_message_ids"`
}

// UnreadStream lists unread messages for one stream topic.
type UnreadStream struct {
	StreamID         StreamID    `json:"stream_id"`
	Topic            string      `json:"topic"`
	UnreadMessageIDs []MessageID `json:"unread_message_ids"`
}

// AllIDs returns every message id mentioned anywhere in the snapshot.
// Ids can repeat (a mention is also listed under its stream or PM).
func (s *UnreadSnapshot) AllIDs() []MessageID {
	if s == nil {
		return nil
	}
	var ids []MessageID
	for _, obj := range s.Huddles {
		ids = append(ids, obj.UnreadMessageIDs...)
	}
	for _, obj := range s.PMs {
		ids = append(ids, obj.UnreadMessageIDs...)
	}
	for _, obj := range s.Streams {
		ids = append(ids, obj.UnreadMessageIDs...)
	}
	ids = append(ids, s.Mentions...)
	return ids
}
