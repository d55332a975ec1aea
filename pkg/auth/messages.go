package auth

import (
	"strings"
	"sync"

	i18n "github.com/goliatone/go-i18n"
	gotemplate "github.com/goliatone/go-template"
)

// Message keys for user-facing auth errors.
const (
	MsgEmailRequired      = "auth.error.email_required"
	MsgPasswordRequired   = "auth.error.password_required"
	MsgNameRequired       = "auth.error.display_name_required"
	MsgPasswordMismatch   = "auth.error.password_mismatch"
	MsgPasswordTooShort   = "auth.error.password_too_short"
	MsgInvalidCredentials = "auth.error.invalid_credentials"
	MsgEmailTaken         = "auth.error.email_taken"
	MsgUnavailable        = "auth.error.unavailable"
	MsgFailed             = "auth.error.failed"
)

var defaultMessages = map[string]string{
	MsgEmailRequired:      "Please enter your email address.",
	MsgPasswordRequired:   "Please enter your password.",
	MsgNameRequired:       "Please choose a display name.",
	MsgPasswordMismatch:   "Passwords do not match.",
	MsgPasswordTooShort:   "Password must be at least {{ min_length }} characters.",
	MsgInvalidCredentials: "Invalid email or password.",
	MsgEmailTaken:         "An account with {{ email }} already exists.",
	MsgUnavailable:        "Sign-in is unavailable right now. Please try again later.",
	MsgFailed:             "Authentication failed: {{ reason }}",
}

// Translations returns the default auth message catalog.
func Translations() i18n.Translations {
	catalog := &i18n.TranslationCatalog{
		Locale:   i18n.Locale{Code: "en"},
		Messages: make(map[string]i18n.Message, len(defaultMessages)),
	}
	for key, text := range defaultMessages {
		msg := i18n.Message{}
		msg.SetContent(text)
		catalog.Messages[key] = msg
	}
	return i18n.Translations{"en": catalog}
}

// Messages turns message keys into display text. Catalog entries may use
// template placeholders filled from the message data.
type Messages struct {
	translator i18n.Translator
	renderer   *gotemplate.Engine
	locale     string

	mu sync.Mutex
}

// NewMessages builds a catalog. A nil translator uses Translations().
func NewMessages(translator i18n.Translator, locale string) (*Messages, error) {
	if translator == nil {
		var err error
		translator, err = i18n.NewSimpleTranslator(
			i18n.NewStaticStore(Translations()),
			i18n.WithTranslatorDefaultLocale("en"),
		)
		if err != nil {
			return nil, err
		}
	}
	renderer, err := gotemplate.NewRenderer(gotemplate.WithBaseDir("."))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(locale) == "" {
		locale = "en"
	}
	return &Messages{translator: translator, renderer: renderer, locale: locale}, nil
}

// Text renders key with data. Unknown keys fall back to the built-in
// English text and then to the key itself.
func (m *Messages) Text(key string, data map[string]any) string {
	text, err := m.translator.Translate(m.locale, key)
	if err != nil || text == "" {
		text = defaultMessages[key]
	}
	if text == "" {
		return key
	}
	if !strings.Contains(text, "{{") {
		return text
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out, err := m.renderer.RenderString(text, data)
	if err != nil {
		return text
	}
	return out
}
