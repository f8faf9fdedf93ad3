package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/storage"
)

type fakeFlagStore struct {
	stored map[string]string
}

func newFakeFlagStore() *fakeFlagStore {
	return &fakeFlagStore{stored: make(map[string]string)}
}

func (s *fakeFlagStore) PutFlag(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.StoredFlag, error) {
	s.stored[key] = contentType
	return &storage.StoredFlag{Key: key, URL: s.PublicURL(key)}, nil
}

func (s *fakeFlagStore) RemoveFlag(ctx context.Context, key string) error {
	delete(s.stored, key)
	return nil
}

func (s *fakeFlagStore) PublicURL(key string) string {
	return "https://flags.test/" + key
}

func TestUploadFlagStoresAndLinks(t *testing.T) {
	teamRepo := newFakeTeamRepo(&models.Team{ID: 5, Name: "Alpha", Code: "ALP"})
	flags := newFakeFlagStore()
	svc := NewTeamService(teamRepo, flags)

	team, err := svc.UploadFlag(context.Background(), 5, "image/png", strings.NewReader("png bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if team.FlagKey == nil || *team.FlagKey != "flags/team_5" {
		t.Errorf("flag key = %v, want flags/team_5", team.FlagKey)
	}
	if team.FlagURL == nil || *team.FlagURL != "https://flags.test/flags/team_5" {
		t.Errorf("flag URL = %v, want the store's public URL", team.FlagURL)
	}
	if flags.stored["flags/team_5"] != "image/png" {
		t.Error("content type should reach the store unchanged")
	}

	// A second upload reuses the same key, so the old image is replaced.
	if _, err := svc.UploadFlag(context.Background(), 5, "image/svg+xml", strings.NewReader("svg bytes")); err != nil {
		t.Fatal(err)
	}
	if len(flags.stored) != 1 {
		t.Errorf("stored objects = %d, want the key reused", len(flags.stored))
	}
}

func TestUploadFlagWithoutStore(t *testing.T) {
	teamRepo := newFakeTeamRepo(&models.Team{ID: 5, Name: "Alpha", Code: "ALP"})
	svc := NewTeamService(teamRepo, nil)

	if _, err := svc.UploadFlag(context.Background(), 5, "image/png", strings.NewReader("png bytes")); err == nil {
		t.Fatal("uploading without a configured store must fail")
	}

	// Reads still work, just without a flag URL.
	team, err := svc.GetTeam(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if team.FlagURL != nil {
		t.Errorf("flag URL = %v, want none without a store", team.FlagURL)
	}
}
