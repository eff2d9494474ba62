package bot

import (
	"fmt"

	"golang.org/x/text/language"
)

// Localization holds the bot's message catalog
type Localization struct {
	defaultLanguage string
	texts           map[string]map[string]string
	supported       []string
	matcher         language.Matcher
}

// Text keys for localization
const (
	KeyStart          = "start"
	KeySearchUsage    = "search_usage"
	KeySearching      = "searching"
	KeyNothingFound   = "nothing_found"
	KeySearchFailed   = "search_failed"
	KeyResultsHeader  = "results_header"
	KeyPrev           = "prev"
	KeyNext           = "next"
	KeyNoSession      = "no_session"
	KeyPageExpired    = "page_expired"
	KeyTrackNotFound  = "track_not_found"
	KeyDownloading    = "downloading"
	KeyDownloadFailed = "download_failed"
	KeyTooLarge       = "too_large"
	KeyTimeout        = "timeout"
	KeyUnavailable    = "unavailable"
	KeyUploadFailed   = "upload_failed"
)

// DefaultLanguage is used when neither config nor the user picks one
const DefaultLanguage = "en"

// NewLocalization creates a catalog whose fallback is defaultLanguage, or
// English when that language is not available
func NewLocalization(defaultLanguage string) *Localization {
	l := &Localization{
		defaultLanguage: DefaultLanguage,
		texts:           make(map[string]map[string]string),
		supported:       []string{"en", "ru", "pt"},
	}
	l.initializeTexts()

	tags := make([]language.Tag, 0, len(l.supported))
	for _, code := range l.supported {
		tags = append(tags, language.MustParse(code))
	}
	l.matcher = language.NewMatcher(tags)

	if _, ok := l.texts[defaultLanguage]; ok {
		l.defaultLanguage = defaultLanguage
	}
	return l
}

// Resolve maps a client language code such as "pt-BR" to a supported
// language, falling back to the default
func (l *Localization) Resolve(code string) string {
	if code == "" {
		return l.defaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return l.defaultLanguage
	}
	_, index, confidence := l.matcher.Match(tag)
	if confidence == language.No {
		return l.defaultLanguage
	}
	return l.supported[index]
}

// DefaultLanguage returns the fallback language code
func (l *Localization) DefaultLanguage() string {
	return l.defaultLanguage
}

// Text returns localized text for key in lang, formatted with args when
// given
func (l *Localization) Text(lang, key string, args ...any) string {
	text := l.lookup(lang, key)
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

func (l *Localization) lookup(lang, key string) string {
	if texts, exists := l.texts[lang]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if text, found := l.texts[DefaultLanguage][key]; found {
		return text
	}

	// Final fallback - return key itself
	return key
}

// AvailableLanguages returns map of available languages with their display names
func (l *Localization) AvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyStart: "🎵 Hi! I'm a music bot.\n\n" +
			"Just send me a song title and artist, for example:\n" +
			"Imagine Dragons - Believer\n\n" +
			"Or use /search <query>",
		KeySearchUsage:    "Give me a query. For example: /search Imagine Dragons - Believer",
		KeySearching:      "🔍 Searching: %s...",
		KeyNothingFound:   "😕 Nothing found. Try another query.",
		KeySearchFailed:   "❌ Search is unavailable right now. Try again later.",
		KeyResultsHeader:  "📋 Search results (page %d/%d):",
		KeyPrev:           "⬅️ Back",
		KeyNext:           "Next ➡️",
		KeyNoSession:      "Search for something first.",
		KeyPageExpired:    "These results are out of date. Search again.",
		KeyTrackNotFound:  "❌ Track not found.",
		KeyDownloading:    "⬇️ Downloading: %s...",
		KeyDownloadFailed: "❌ Could not download the track. Try another one.",
		KeyTooLarge:       "❌ The track is larger than %d MB. Try another one.",
		KeyTimeout:        "❌ The download took too long. Try again later.",
		KeyUnavailable:    "❌ This track is no longer available.",
		KeyUploadFailed:   "❌ Could not send the file. Try again later.",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyStart: "🎵 Привет! Я музыкальный бот.\n\n" +
			"Просто отправь мне название песни и исполнителя, например:\n" +
			"Imagine Dragons - Believer\n\n" +
			"Или используй команду /search <запрос>",
		KeySearchUsage:    "Укажи запрос. Например: /search Imagine Dragons - Believer",
		KeySearching:      "🔍 Ищу: %s...",
		KeyNothingFound:   "😕 Ничего не найдено. Попробуй другой запрос.",
		KeySearchFailed:   "❌ Поиск сейчас недоступен. Попробуй позже.",
		KeyResultsHeader:  "📋 Результаты поиска (стр. %d/%d):",
		KeyPrev:           "⬅️ Назад",
		KeyNext:           "Далее ➡️",
		KeyNoSession:      "Сначала выполни поиск.",
		KeyPageExpired:    "Эти результаты устарели. Повтори поиск.",
		KeyTrackNotFound:  "❌ Трек не найден.",
		KeyDownloading:    "⬇️ Скачиваю: %s...",
		KeyDownloadFailed: "❌ Не удалось скачать трек. Попробуй другой.",
		KeyTooLarge:       "❌ Трек больше %d МБ. Попробуй другой.",
		KeyTimeout:        "❌ Скачивание заняло слишком много времени. Попробуй позже.",
		KeyUnavailable:    "❌ Этот трек больше недоступен.",
		KeyUploadFailed:   "❌ Не удалось отправить файл. Попробуй позже.",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyStart: "🎵 Olá! Eu sou um bot de música.\n\n" +
			"Envie o nome da música e do artista, por exemplo:\n" +
			"Imagine Dragons - Believer\n\n" +
			"Ou use /search <consulta>",
		KeySearchUsage:    "Informe uma consulta. Por exemplo: /search Imagine Dragons - Believer",
		KeySearching:      "🔍 Procurando: %s...",
		KeyNothingFound:   "😕 Nada encontrado. Tente outra consulta.",
		KeySearchFailed:   "❌ A busca está indisponível agora. Tente mais tarde.",
		KeyResultsHeader:  "📋 Resultados da busca (pág. %d/%d):",
		KeyPrev:           "⬅️ Voltar",
		KeyNext:           "Próxima ➡️",
		KeyNoSession:      "Faça uma busca primeiro.",
		KeyPageExpired:    "Estes resultados estão desatualizados. Busque novamente.",
		KeyTrackNotFound:  "❌ Faixa não encontrada.",
		KeyDownloading:    "⬇️ Baixando: %s...",
		KeyDownloadFailed: "❌ Não foi possível baixar a faixa. Tente outra.",
		KeyTooLarge:       "❌ A faixa tem mais de %d MB. Tente outra.",
		KeyTimeout:        "❌ O download demorou demais. Tente mais tarde.",
		KeyUnavailable:    "❌ Esta faixa não está mais disponível.",
		KeyUploadFailed:   "❌ Não foi possível enviar o arquivo. Tente mais tarde.",
	}
}
