package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-gamesync/pkg/activity"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/jaytaylor/html2text"
)

// Player record keys.
const (
	KeyDisplayName = "DisplayName"
	KeyBio         = "Bio"
	KeyAvatarURL   = "AvatarUrl"
)

// MaxAvatarBytes is the largest accepted avatar upload.
const MaxAvatarBytes = 2 * 1024 * 1024

var (
	ErrInvalidImage      = errors.New("profile: please select an image file")
	ErrImageTooLarge     = errors.New("profile: image size must be less than 2MB")
	ErrAvatarUnavailable = errors.New("profile: avatar storage unavailable")
	ErrWriteFailed       = errors.New("profile: player record not updated")
	ErrNoAvatar          = errors.New("profile: no avatar uploaded")
)

// Profile is the public player profile.
type Profile struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatarUrl"`
}

// RecordStore reads and writes the player's record.
type RecordStore interface {
	GetUserData(ctx context.Context, keys ...string) (map[string]string, error)
	UpdateUserData(ctx context.Context, data map[string]string) (int, error)
}

// AvatarStore uploads images and deletes them by URL. The blob client
// satisfies it.
type AvatarStore interface {
	Upload(ctx context.Context, data []byte, contentType, originalName string) string
	Delete(ctx context.Context, url string) bool
}

// AvatarSigner issues time-limited links to stored avatars.
type AvatarSigner interface {
	BlobNameFromURL(raw string) (string, bool)
	SignedURL(ctx context.Context, name string, ttl time.Duration) string
}

type Service struct {
	records     RecordStore
	avatars     AvatarStore
	placeholder string
	maxBytes    int
	fallback    func() string
	playerID    func() string
	logger      logger.Logger
	hooks       activity.Hooks
}

type Option func(*Service)

// WithPlaceholder sets the avatar shown when none is stored.
func WithPlaceholder(url string) Option {
	return func(s *Service) { s.placeholder = url }
}

// WithMaxAvatarBytes lowers the upload limit; values outside
// 1..MaxAvatarBytes are ignored.
func WithMaxAvatarBytes(n int) Option {
	return func(s *Service) {
		if n > 0 && n <= MaxAvatarBytes {
			s.maxBytes = n
		}
	}
}

// WithDisplayNameFallback supplies a name when the record has none,
// typically the signed-in user's name.
func WithDisplayNameFallback(fn func() string) Option {
	return func(s *Service) { s.fallback = fn }
}

func WithPlayerID(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.playerID = fn
		}
	}
}

func WithLogger(lgr logger.Logger) Option {
	return func(s *Service) { s.logger = logger.OrNop(lgr) }
}

func WithActivity(hooks ...activity.Hook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

func NewService(records RecordStore, avatars AvatarStore, opts ...Option) *Service {
	s := &Service{
		records:  records,
		avatars:  avatars,
		maxBytes: MaxAvatarBytes,
		playerID: func() string { return "" },
		logger:   &logger.Nop{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load reads the profile fields from the player record.
func (s *Service) Load(ctx context.Context) (Profile, error) {
	data, err := s.records.GetUserData(ctx, KeyDisplayName, KeyBio, KeyAvatarURL)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{
		DisplayName: data[KeyDisplayName],
		Bio:         data[KeyBio],
		AvatarURL:   data[KeyAvatarURL],
	}
	if p.DisplayName == "" && s.fallback != nil {
		p.DisplayName = s.fallback()
	}
	if p.AvatarURL == "" {
		p.AvatarURL = s.placeholder
	}
	return p, nil
}

// Update writes all profile fields. Markup in Bio is reduced to plain text.
func (s *Service) Update(ctx context.Context, p Profile) (int, error) {
	bio, err := PlainText(p.Bio)
	if err != nil {
		return 0, err
	}
	avatar := p.AvatarURL
	if avatar == s.placeholder {
		avatar = ""
	}
	version, err := s.records.UpdateUserData(ctx, map[string]string{
		KeyDisplayName: strings.TrimSpace(p.DisplayName),
		KeyBio:         bio,
		KeyAvatarURL:   avatar,
	})
	if err != nil {
		return 0, err
	}
	if version == 0 {
		return 0, ErrWriteFailed
	}
	s.notify(ctx, activity.VerbProfileUpdated, map[string]any{"version": version})
	return version, nil
}

// UploadAvatar validates and stores a new avatar, records its URL and
// removes the previous image.
func (s *Service) UploadAvatar(ctx context.Context, data []byte, contentType, name string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return "", ErrInvalidImage
	}
	if len(data) > s.maxBytes {
		return "", ErrImageTooLarge
	}
	current, err := s.records.GetUserData(ctx, KeyAvatarURL)
	if err != nil {
		return "", err
	}
	if s.avatars == nil {
		return "", ErrAvatarUnavailable
	}
	url := s.avatars.Upload(ctx, data, contentType, name)
	if url == "" {
		return "", ErrAvatarUnavailable
	}
	version, err := s.records.UpdateUserData(ctx, map[string]string{KeyAvatarURL: url})
	if err == nil && version == 0 {
		err = ErrWriteFailed
	}
	if err != nil {
		// The record still points at the previous avatar.
		s.avatars.Delete(ctx, url)
		return "", err
	}
	if previous := current[KeyAvatarURL]; previous != "" && previous != url {
		if !s.avatars.Delete(ctx, previous) {
			s.logger.Warn("previous avatar not removed", logger.F("url", previous))
		}
	}
	s.notify(ctx, activity.VerbAvatarChanged, map[string]any{"url": url})
	return url, nil
}

// SharedAvatarURL returns a time-limited link to the player's current avatar.
func (s *Service) SharedAvatarURL(ctx context.Context, ttl time.Duration) (string, error) {
	signer, ok := s.avatars.(AvatarSigner)
	if !ok || signer == nil {
		return "", ErrAvatarUnavailable
	}
	data, err := s.records.GetUserData(ctx, KeyAvatarURL)
	if err != nil {
		return "", err
	}
	current := data[KeyAvatarURL]
	if current == "" || current == s.placeholder {
		return "", ErrNoAvatar
	}
	name, ok := signer.BlobNameFromURL(current)
	if !ok {
		return "", fmt.Errorf("%w: unrecognised avatar url", ErrNoAvatar)
	}
	signed := signer.SignedURL(ctx, name, ttl)
	if signed == "" {
		return "", ErrAvatarUnavailable
	}
	return signed, nil
}

// PlainText strips markup from user supplied text.
func PlainText(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.ContainsAny(raw, "<&") {
		return raw, nil
	}
	plain, err := html2text.FromString(raw, html2text.Options{OmitLinks: true})
	if err != nil {
		return "", fmt.Errorf("profile: normalize bio: %w", err)
	}
	return strings.TrimSpace(plain), nil
}

func (s *Service) notify(ctx context.Context, verb string, meta map[string]any) {
	player := s.playerID()
	s.hooks.Notify(ctx, activity.Event{
		Verb:       verb,
		ActorID:    player,
		UserID:     player,
		ObjectType: "profile",
		ObjectID:   player,
		Metadata:   meta,
	})
}
