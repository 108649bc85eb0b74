package testutil

// SampleState is a small register payload shared by session and CLI tests.
//
// Users: me=30, alice=101, bob=102, carol=103 (muted), dave=104 (deactivated).
// Streams: devel=100, social=101, noisy=200 (muted), abandoned=300
// (unsubscribed). The devel/lunch topic is muted.
//
// Counts: 3 private, 2 mentions, 6 home (3 devel/social stream + 3 private).
const SampleState = `{
  "user_id": 30,
  "realm_users": [
    {"user_id": 30, "email": "me@example.com", "full_name": "Me Myself"},
    {"user_id": 101, "email": "alice@example.com", "full_name": "Alice Smith"},
    {"user_id": 102, "email": "bob@example.com", "full_name": "Bob Jones"},
    {"user_id": 103, "email": "carol@example.com", "full_name": "Carol White"}
  ],
  "realm_non_active_users": [
    {"user_id": 104, "email": "dave@example.com", "full_name": "Dave Gone"}
  ],
  "cross_realm_bots": [
    {"user_id": 5, "email": "welcome-bot@zulip.com", "full_name": "Welcome Bot", "is_bot": true}
  ],
  "subscriptions": [
    {"stream_id": 100, "name": "devel"},
    {"stream_id": 101, "name": "social"},
    {"stream_id": 200, "name": "noisy", "is_muted": true}
  ],
  "unsubscribed": [
    {"stream_id": 300, "name": "abandoned"}
  ],
  "muted_topics": [["devel", "lunch", 1600000000]],
  "muted_users": [{"id": 103, "timestamp": 1600000000}],
  "recent_private_conversations": [
    {"user_ids": [101], "max_message_id": 12},
    {"user_ids": [101, 102], "max_message_id": 15}
  ],
  "unread_msgs": {
    "pms": [{"sender_id": 101, "unread_message_ids": [11, 12]}],
    "huddles": [{"user_ids_string": "30,101,102", "unread_message_ids": [15]}],
    "streams": [
      {"stream_id": 100, "topic": "backend", "unread_message_ids": [20, 21]},
      {"stream_id": 100, "topic": "lunch", "unread_message_ids": [22]},
      {"stream_id": 101, "topic": "random", "unread_message_ids": [30]},
      {"stream_id": 200, "topic": "alerts", "unread_message_ids": [40, 41]},
      {"stream_id": 300, "topic": "old", "unread_message_ids": [50]}
    ],
    "mentions": [21, 40]
  }
}`

// SampleEvents is a JSONL event stream to apply after SampleState.
//
// After the known events: 3 private, 3 mentions, 5 home. The trailing
// typing event is of a type sessions do not handle.
const SampleEvents = `{"id": 1, "type": "message", "flags": [], "message": {"id": 60, "type": "private", "sender_id": 101, "sender_email": "alice@example.com", "display_recipient": [{"id": 30, "email": "me@example.com"}, {"id": 101, "email": "alice@example.com"}]}}
{"id": 2, "type": "message", "flags": ["mentioned"], "message": {"id": 61, "type": "stream", "sender_id": 102, "sender_email": "bob@example.com", "stream_id": 100, "topic": "backend"}}
{"id": 3, "type": "update_message_flags", "op": "add", "flag": "read", "messages": [11, 20], "all": false}

{"id": 4, "type": "update_message", "message_id": 21, "message_ids": [21], "stream_id": 100, "topic": "frontend"}
{"id": 5, "type": "muted_topics", "muted_topics": [["devel", "backend", 1600000100]]}
{"id": 6, "type": "subscription", "op": "update", "stream_id": 101, "property": "in_home_view", "value": false}
{"id": 7, "type": "realm_user", "op": "add", "person": {"user_id": 110, "email": "new@example.com", "full_name": "New Person"}}
{"id": 8, "type": "typing", "op": "start"}
`
