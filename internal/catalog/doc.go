// Package catalog talks to the media catalog: text search, playlist
// expansion and audio fetch. The production client drives yt-dlp through
// github.com/lrstanley/go-ytdlp, playlist URLs are expanded with
// github.com/ytget/ytdlp/v2, and search results can be cached in Redis.
package catalog
