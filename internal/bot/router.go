package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ytget/yt-music-bot/internal/catalog"
	"github.com/ytget/yt-music-bot/internal/download"
	"github.com/ytget/yt-music-bot/internal/metrics"
	"github.com/ytget/yt-music-bot/internal/model"
	"github.com/ytget/yt-music-bot/internal/paginate"
	"github.com/ytget/yt-music-bot/internal/session"
	"github.com/ytget/yt-music-bot/internal/workpool"
)

// DefaultSearchLimit is how many results one search asks for
const DefaultSearchLimit = catalog.DefaultSearchLimit

const bytesPerMB = 1024 * 1024

// RouterOptions wire a Router to its collaborators
type RouterOptions struct {
	Catalog      catalog.Client
	Sessions     *session.Store
	Pipeline     download.Runner
	Messenger    Messenger
	Pool         *workpool.Pool // bounds catalog searches
	Localization *Localization
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	SearchLimit  int
	MaxBytes     int64 // upload limit shown in the too-large message
}

// Router handles user events
type Router struct {
	catalog     catalog.Client
	sessions    *session.Store
	pipeline    download.Runner
	messenger   Messenger
	pool        *workpool.Pool
	loc         *Localization
	metrics     *metrics.Metrics
	logger      *slog.Logger
	searchLimit int
	maxBytes    int64
}

// NewRouter creates a router, filling in defaults for optional fields
func NewRouter(opts RouterOptions) *Router {
	r := &Router{
		catalog:     opts.Catalog,
		sessions:    opts.Sessions,
		pipeline:    opts.Pipeline,
		messenger:   opts.Messenger,
		pool:        opts.Pool,
		loc:         opts.Localization,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		searchLimit: opts.SearchLimit,
		maxBytes:    opts.MaxBytes,
	}
	if r.sessions == nil {
		r.sessions = session.NewStore()
	}
	if r.pool == nil {
		r.pool = workpool.New(1)
	}
	if r.loc == nil {
		r.loc = NewLocalization(DefaultLanguage)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.searchLimit <= 0 {
		r.searchLimit = DefaultSearchLimit
	}
	if r.maxBytes <= 0 || r.maxBytes > download.MaxUploadBytes {
		r.maxBytes = download.MaxUploadBytes
	}
	return r
}

// Handle dispatches one event
func (r *Router) Handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventStart:
		r.Start(ctx, ev.User)
	case EventSearch:
		r.Search(ctx, ev.User, ev.Text)
	case EventCallback:
		r.Callback(ctx, ev.User, ev.CallbackID, ev.CallbackData, ev.Message)
	default:
		r.logger.Warn("unhandled event", "kind", int(ev.Kind), "user", ev.User.Key())
	}
}

// Start sends the help text
func (r *Router) Start(ctx context.Context, u User) {
	lang := r.loc.Resolve(u.LanguageCode)
	r.send(ctx, u.ChatID, r.loc.Text(lang, KeyStart), nil)
}

// Search runs a catalog search for query and shows the first page of
// results, replacing the user's previous session
func (r *Router) Search(ctx context.Context, u User, query string) {
	lang := r.loc.Resolve(u.LanguageCode)
	query = strings.TrimSpace(query)
	if query == "" {
		r.send(ctx, u.ChatID, r.loc.Text(lang, KeySearchUsage), nil)
		return
	}

	status, err := r.messenger.SendText(ctx, u.ChatID, r.loc.Text(lang, KeySearching, query), nil)
	if err != nil {
		r.logger.Error("failed to send status", "user", u.Key(), "error", err)
		return
	}

	results, err := workpool.Run(ctx, r.pool, func(ctx context.Context) ([]model.Track, error) {
		return r.catalog.Search(ctx, query, r.searchLimit)
	})
	if err != nil {
		r.metrics.ObserveSearch(metrics.SearchError)
		r.logger.Warn("search failed", "user", u.Key(), "query", query, "error", err)
		r.edit(ctx, status, r.loc.Text(lang, KeySearchFailed), nil)
		return
	}
	if len(results) == 0 {
		r.metrics.ObserveSearch(metrics.SearchEmpty)
		r.edit(ctx, status, r.loc.Text(lang, KeyNothingFound), nil)
		return
	}
	r.metrics.ObserveSearch(metrics.SearchOK)

	r.sessions.Put(u.Key(), results)
	page, err := r.sessions.Page(u.Key())
	if err != nil {
		r.logger.Error("session lost after put", "user", u.Key(), "error", err)
		r.edit(ctx, status, r.loc.Text(lang, KeySearchFailed), nil)
		return
	}

	r.logger.Info("search completed", "user", u.Key(), "query", query, "results", len(results))
	text, kb := RenderPage(r.loc, lang, page)
	r.edit(ctx, status, text, kb)
}

// Callback decodes button data and runs the matching action
func (r *Router) Callback(ctx context.Context, u User, callbackID, data string, msg MessageRef) {
	action, n, err := DecodeCallback(data)
	if err != nil {
		r.logger.Warn("ignoring callback", "user", u.Key(), "error", err)
		r.answer(ctx, callbackID, "")
		return
	}

	switch action {
	case ActionPage:
		r.Navigate(ctx, u, callbackID, msg, n)
	case ActionDownload:
		r.Download(ctx, u, callbackID, msg, n)
	}
}

// Navigate shows page n of the user's session in place of msg. A page
// outside the session leaves both the session and the message unchanged.
func (r *Router) Navigate(ctx context.Context, u User, callbackID string, msg MessageRef, n int) {
	lang := r.loc.Resolve(u.LanguageCode)

	page, err := r.sessions.SetPage(u.Key(), n)
	switch {
	case errors.Is(err, session.ErrNoSession):
		r.answer(ctx, callbackID, r.loc.Text(lang, KeyNoSession))
		return
	case errors.Is(err, paginate.ErrOutOfRange):
		r.answer(ctx, callbackID, r.loc.Text(lang, KeyPageExpired))
		return
	case err != nil:
		r.logger.Error("navigate failed", "user", u.Key(), "page", n, "error", err)
		r.answer(ctx, callbackID, "")
		return
	}

	r.answer(ctx, callbackID, "")
	text, kb := RenderPage(r.loc, lang, page)
	r.edit(ctx, msg, text, kb)
}

// Download fetches the track at absolute index n of the user's session and
// sends it as audio
func (r *Router) Download(ctx context.Context, u User, callbackID string, msg MessageRef, n int) {
	lang := r.loc.Resolve(u.LanguageCode)
	r.answer(ctx, callbackID, "")

	track, err := r.sessions.Track(u.Key(), n)
	switch {
	case errors.Is(err, session.ErrNoSession):
		r.logger.Info("download without session", "user", u.Key(), "index", n)
		r.edit(ctx, msg, r.loc.Text(lang, KeyNoSession), nil)
		return
	case err != nil:
		r.logger.Info("download of unknown track", "user", u.Key(), "index", n, "error", err)
		r.edit(ctx, msg, r.loc.Text(lang, KeyTrackNotFound), nil)
		return
	}

	status, err := r.messenger.SendText(ctx, u.ChatID, r.loc.Text(lang, KeyDownloading, track.DisplayName()), nil)
	if err != nil {
		r.logger.Error("failed to send status", "user", u.Key(), "error", err)
		return
	}

	deliver := download.DeliverFunc(func(ctx context.Context, a download.Artifact) error {
		return r.messenger.SendAudio(ctx, u.ChatID, a)
	})
	job, err := r.pipeline.Run(ctx, track, deliver)
	if err != nil {
		reason := download.FailureReason(err)
		r.logger.Warn("download failed",
			"user", u.Key(),
			"track_id", track.ID,
			"reason", reason,
			"error", err)
		r.edit(ctx, status, r.failureText(lang, reason), nil)
		return
	}

	r.logger.Info("download delivered", "user", u.Key(), "job", job.ID, "track_id", track.ID, "elapsed", job.Elapsed())
	if err := r.messenger.Delete(ctx, status); err != nil {
		r.logger.Debug("failed to delete status", "user", u.Key(), "error", err)
	}
}

// failureText maps a pipeline failure reason to a user message
func (r *Router) failureText(lang, reason string) string {
	switch reason {
	case string(catalog.ReasonSizeLimit):
		return r.loc.Text(lang, KeyTooLarge, r.maxBytes/bytesPerMB)
	case string(catalog.ReasonTimeout):
		return r.loc.Text(lang, KeyTimeout)
	case download.ReasonNotFound:
		return r.loc.Text(lang, KeyUnavailable)
	case download.ReasonDelivery:
		return r.loc.Text(lang, KeyUploadFailed)
	}
	return r.loc.Text(lang, KeyDownloadFailed)
}

func (r *Router) send(ctx context.Context, chatID int64, text string, kb Keyboard) {
	if _, err := r.messenger.SendText(ctx, chatID, text, kb); err != nil {
		r.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (r *Router) edit(ctx context.Context, ref MessageRef, text string, kb Keyboard) {
	if err := r.messenger.EditText(ctx, ref, text, kb); err != nil {
		r.logger.Error("failed to edit message", "chat_id", ref.ChatID, "message_id", ref.MessageID, "error", err)
	}
}

func (r *Router) answer(ctx context.Context, callbackID, text string) {
	if callbackID == "" {
		return
	}
	if err := r.messenger.AnswerCallback(ctx, callbackID, text); err != nil {
		r.logger.Debug("failed to answer callback", "error", err)
	}
}

// RenderPage builds the results message for page: a header, one line per
// entry, one download button per entry and a navigation row
func RenderPage(loc *Localization, lang string, page paginate.Page) (string, Keyboard) {
	var b strings.Builder
	b.WriteString(loc.Text(lang, KeyResultsHeader, page.Index+1, page.Count))
	b.WriteString("\n\n")
	for i, entry := range page.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(paginate.Line(entry))
	}

	kb := make(Keyboard, 0, len(page.Items)+1)
	for _, entry := range page.Items {
		kb = append(kb, []Button{{
			Text: paginate.ButtonLabel(entry),
			Data: EncodeDownload(entry.Index()),
		}})
	}

	var nav []Button
	if page.HasPrev {
		nav = append(nav, Button{Text: loc.Text(lang, KeyPrev), Data: EncodePage(page.Index - 1)})
	}
	if page.HasNext {
		nav = append(nav, Button{Text: loc.Text(lang, KeyNext), Data: EncodePage(page.Index + 1)})
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}
	return b.String(), kb
}
