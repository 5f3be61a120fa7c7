package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_catalog/internal/db/dbtest"
	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/mykafka"
	"github.com/Skotchmaster/product_catalog/internal/repo"
)

type published struct {
	Topic string
	Key   string
	Event *mykafka.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, _ := event.(*mykafka.Event)
	p.events = append(p.events, published{Topic: topic, Key: key, Event: ev})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event.Type)
	}
	return out
}

type recordingIndexer struct {
	indexed []uint
	deleted []uint
	err     error
}

func (ix *recordingIndexer) IndexProduct(_ context.Context, p *models.Product) error {
	ix.indexed = append(ix.indexed, p.ID)
	return ix.err
}

func (ix *recordingIndexer) DeleteProduct(_ context.Context, id uint) error {
	ix.deleted = append(ix.deleted, id)
	return ix.err
}

var errBroker = errors.New("broker down")

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(dbtest.Open(t))
}

func seedUser(t *testing.T, r *repo.GormRepo, username string, staff, superuser bool) *identity.Caller {
	t.Helper()

	u := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "!",
		IsActive:     true,
		IsStaff:      staff,
		IsSuperuser:  superuser,
		DateJoined:   time.Now().UTC(),
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return identity.FromUser(u)
}
