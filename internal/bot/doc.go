// Package bot is the chat front end. The Router turns user events (search,
// page navigation, download selection) into calls on the session store, the
// paginator and the download pipeline, and renders the answers through a
// Messenger. Telegram implements Messenger with the Bot API and feeds
// updates into the Router through a per-user serializer.
package bot
