package profile

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-gamesync/pkg/activity"
)

type fakeRecords struct {
	data    map[string]string
	err     error
	version int
	// drop mimics a write lost in transport: no error, version 0.
	drop bool
}

func (f *fakeRecords) GetUserData(_ context.Context, keys ...string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := f.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeRecords) UpdateUserData(_ context.Context, data map[string]string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.drop {
		return 0, nil
	}
	if f.data == nil {
		f.data = map[string]string{}
	}
	for k, v := range data {
		f.data[k] = v
	}
	f.version++
	return f.version, nil
}

type fakeAvatars struct {
	next    string
	deleted []string
}

func (f *fakeAvatars) Upload(context.Context, []byte, string, string) string { return f.next }

func (f *fakeAvatars) Delete(_ context.Context, url string) bool {
	f.deleted = append(f.deleted, url)
	return true
}

type signingAvatars struct {
	fakeAvatars
	ttl time.Duration
}

func (s *signingAvatars) BlobNameFromURL(raw string) (string, bool) {
	name := strings.TrimPrefix(raw, "https://cdn/")
	return name, name != raw && name != ""
}

func (s *signingAvatars) SignedURL(_ context.Context, name string, ttl time.Duration) string {
	s.ttl = ttl
	return "https://cdn/" + name + "?sig=signed"
}

func TestLoadAppliesFallbacks(t *testing.T) {
	svc := NewService(&fakeRecords{data: map[string]string{KeyBio: "hi"}}, nil,
		WithPlaceholder("/img/placeholder.png"),
		WithDisplayNameFallback(func() string { return "Ada" }))

	p, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.DisplayName != "Ada" || p.Bio != "hi" || p.AvatarURL != "/img/placeholder.png" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestUpdateStripsMarkup(t *testing.T) {
	records := &fakeRecords{}
	hooks := &activity.Recorder{}
	svc := NewService(records, nil, WithPlaceholder("/img/placeholder.png"), WithActivity(hooks))

	version, err := svc.Update(context.Background(), Profile{
		DisplayName: " Ada ",
		Bio:         "<p>I like <b>puzzles</b></p>",
		AvatarURL:   "/img/placeholder.png",
	})
	if err != nil || version != 1 {
		t.Fatalf("update: %d %v", version, err)
	}
	if records.data[KeyDisplayName] != "Ada" || records.data[KeyAvatarURL] != "" {
		t.Fatalf("unexpected record %v", records.data)
	}
	if strings.Contains(records.data[KeyBio], "<") || !strings.Contains(records.data[KeyBio], "puzzles") {
		t.Fatalf("expected plain bio, got %q", records.data[KeyBio])
	}
	if got := hooks.Verbs(); len(got) != 1 || got[0] != activity.VerbProfileUpdated {
		t.Fatalf("unexpected activity %v", got)
	}
}

func TestUploadAvatarValidation(t *testing.T) {
	svc := NewService(&fakeRecords{}, &fakeAvatars{next: "https://cdn/x.png"})
	ctx := context.Background()

	if _, err := svc.UploadAvatar(ctx, []byte("x"), "application/pdf", "x.pdf"); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected invalid image, got %v", err)
	}
	big := bytes.Repeat([]byte{1}, MaxAvatarBytes+1)
	if _, err := svc.UploadAvatar(ctx, big, "image/png", "x.png"); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
	exact := bytes.Repeat([]byte{1}, MaxAvatarBytes)
	if _, err := svc.UploadAvatar(ctx, exact, "image/png", "x.png"); err != nil {
		t.Fatalf("expected 2MiB to be accepted, got %v", err)
	}
}

func TestUploadAvatarReplacesPrevious(t *testing.T) {
	records := &fakeRecords{data: map[string]string{KeyAvatarURL: "https://cdn/old.png"}}
	avatars := &fakeAvatars{next: "https://cdn/new.png"}
	svc := NewService(records, avatars)

	url, err := svc.UploadAvatar(context.Background(), []byte("png"), "image/png", "me.png")
	if err != nil || url != "https://cdn/new.png" {
		t.Fatalf("upload: %q %v", url, err)
	}
	if records.data[KeyAvatarURL] != url {
		t.Fatalf("avatar url not stored")
	}
	if len(avatars.deleted) != 1 || avatars.deleted[0] != "https://cdn/old.png" {
		t.Fatalf("expected old avatar deleted, got %v", avatars.deleted)
	}
}

func TestUploadAvatarUnavailableKeepsPlaceholder(t *testing.T) {
	records := &fakeRecords{}
	svc := NewService(records, &fakeAvatars{next: ""}, WithPlaceholder("/img/placeholder.png"))
	ctx := context.Background()

	if _, err := svc.UploadAvatar(ctx, []byte("png"), "image/png", "me.png"); !errors.Is(err, ErrAvatarUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	p, _ := svc.Load(ctx)
	if p.AvatarURL != "/img/placeholder.png" {
		t.Fatalf("expected placeholder, got %q", p.AvatarURL)
	}
}

func TestDroppedWritesAreFailures(t *testing.T) {
	records := &fakeRecords{data: map[string]string{KeyAvatarURL: "https://cdn/old.png"}, drop: true}
	avatars := &fakeAvatars{next: "https://cdn/new.png"}
	hooks := &activity.Recorder{}
	svc := NewService(records, avatars, WithActivity(hooks))
	ctx := context.Background()

	url, err := svc.UploadAvatar(ctx, []byte("img"), "image/png", "new.png")
	if !errors.Is(err, ErrWriteFailed) || url != "" {
		t.Fatalf("expected write failure, got %q %v", url, err)
	}
	if len(avatars.deleted) != 1 || avatars.deleted[0] != "https://cdn/new.png" {
		t.Fatalf("expected only the new blob removed, got %v", avatars.deleted)
	}
	if records.data[KeyAvatarURL] != "https://cdn/old.png" {
		t.Fatalf("record changed: %v", records.data)
	}

	if version, err := svc.Update(ctx, Profile{DisplayName: "Ada"}); !errors.Is(err, ErrWriteFailed) || version != 0 {
		t.Fatalf("expected update failure, got %d %v", version, err)
	}
	if got := hooks.Verbs(); len(got) != 0 {
		t.Fatalf("expected no activity, got %v", got)
	}
}

func TestSharedAvatarURL(t *testing.T) {
	ctx := context.Background()
	avatars := &signingAvatars{}
	records := &fakeRecords{data: map[string]string{KeyAvatarURL: "https://cdn/me.png"}}
	svc := NewService(records, avatars)

	got, err := svc.SharedAvatarURL(ctx, time.Minute)
	if err != nil || got != "https://cdn/me.png?sig=signed" || avatars.ttl != time.Minute {
		t.Fatalf("unexpected signed url %q %v (ttl %s)", got, err, avatars.ttl)
	}

	records.data[KeyAvatarURL] = ""
	if _, err := svc.SharedAvatarURL(ctx, time.Minute); !errors.Is(err, ErrNoAvatar) {
		t.Fatalf("expected no avatar, got %v", err)
	}
	if _, err := NewService(records, &fakeAvatars{}).SharedAvatarURL(ctx, time.Minute); !errors.Is(err, ErrAvatarUnavailable) {
		t.Fatalf("expected unavailable without a signer, got %v", err)
	}
}

func TestPlainTextLeavesPlainInputAlone(t *testing.T) {
	got, err := PlainText("  just text  ")
	if err != nil || got != "just text" {
		t.Fatalf("unexpected %q %v", got, err)
	}
}
