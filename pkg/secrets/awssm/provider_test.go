package awssm

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/goliatone/go-gamesync/pkg/secrets"
)

type fakeClient struct {
	calls  []string
	values map[string]string
	err    error
}

func (f *fakeClient) GetSecretValue(_ context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	id := aws.ToString(params.SecretId)
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	value, ok := f.values[id]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("missing")}
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(value)}, nil
}

func TestProviderFetchUsesPrefix(t *testing.T) {
	client := &fakeClient{values: map[string]string{"gamesync/storage-key": "abc"}}
	prov := New(nil, WithConfig(Config{Prefix: "gamesync/"}), WithClient(client))

	got, err := prov.Fetch(context.Background(), "storage-key")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if len(client.calls) != 1 || client.calls[0] != "gamesync/storage-key" {
		t.Fatalf("unexpected calls %v", client.calls)
	}
}

func TestProviderFetchMapsNotFound(t *testing.T) {
	prov := New(nil, WithClient(&fakeClient{}))
	if _, err := prov.Fetch(context.Background(), "missing"); !errors.Is(err, secrets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProviderFetchWrapsTransportErrors(t *testing.T) {
	boom := errors.New("throttled")
	prov := New(nil, WithClient(&fakeClient{err: boom}))
	_, err := prov.Fetch(context.Background(), "name")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestProviderWorksBehindResolverCache(t *testing.T) {
	client := &fakeClient{values: map[string]string{"db": "conn"}}
	resolver := secrets.NewResolver(secrets.NewCache(0), New(nil, WithClient(client)))
	ref := secrets.Credential{Ref: "@Provider(SecretUri=https://vault.example/secrets/db/1)"}
	for i := 0; i < 2; i++ {
		if got, err := resolver.Resolve(context.Background(), ref); err != nil || got != "conn" {
			t.Fatalf("resolve #%d: %q %v", i, got, err)
		}
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected one remote call, got %d", len(client.calls))
	}
}
