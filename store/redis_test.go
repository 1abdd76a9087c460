package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	skeptic "github.com/dialoglabs/skeptic-persona-go"
)

func newTestStore(t *testing.T, config ...RedisStoreConfig) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisSessionStore(client, config...)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisSessionStore_LoadMissingCreatesFresh(t *testing.T) {
	s, _ := newTestStore(t)

	st, err := s.Load("s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st == nil || st.Turn != 0 || len(st.Evidence) != 0 {
		t.Fatalf("expected a fresh session, got %+v", st)
	}
}

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	st, err := s.Load("s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	st.NextTurn()
	st.BumpEvidence(skeptic.EvDemandLetter, map[string]interface{}{"зарплата": "90000"})
	st.PendingAcks = []string{skeptic.EvDemandLetter}
	st.Committed = true
	st.CommittedUnits = 2
	st.CommittedChannel = skeptic.ChannelBank
	if err := s.Save("s1", st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("s1")
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if got.Turn != 1 || !got.HasEvidence(skeptic.EvDemandLetter) {
		t.Fatalf("state lost in round trip: %+v", got)
	}
	if !got.Committed || got.CommittedUnits != 2 || got.CommittedChannel != skeptic.ChannelBank {
		t.Fatalf("commitment lost in round trip: %+v", got)
	}
	if len(got.PendingAcks) != 1 || got.PendingAcks[0] != skeptic.EvDemandLetter {
		t.Fatalf("pending acks lost in round trip: %v", got.PendingAcks)
	}
}

func TestRedisSessionStore_SessionsIsolated(t *testing.T) {
	s, _ := newTestStore(t)

	a, _ := s.Load("a")
	a.BumpEvidence(skeptic.EvBusinessCard, nil)
	if err := s.Save("a", a); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := s.Load("b")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.HasEvidence(skeptic.EvBusinessCard) {
		t.Fatal("evidence leaked across sessions")
	}
}

func TestRedisSessionStore_TTLExpiresIdleSessions(t *testing.T) {
	s, mr := newTestStore(t, RedisStoreConfig{TTL: time.Minute})

	st, _ := s.Load("s1")
	st.NextTurn()
	if err := s.Save("s1", st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := s.Load("s1")
	if err != nil {
		t.Fatalf("Load after expiry: %v", err)
	}
	if got.Turn != 0 {
		t.Fatalf("expired session should come back fresh, got turn %d", got.Turn)
	}
}

func TestRedisSessionStore_PrefixDefault(t *testing.T) {
	s, mr := newTestStore(t)

	st, _ := s.Load("s1")
	if err := s.Save("s1", st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists("skeptic:session:s1") {
		t.Fatalf("expected default key prefix, keys: %v", mr.Keys())
	}
}
