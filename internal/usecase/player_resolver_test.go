package usecase

import (
	"testing"

	"github.com/rinkcharts/shotmap/internal/domain/player"
	"github.com/rinkcharts/shotmap/internal/domain/team"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
)

func TestPlayerResolver_NeverOverwritesRosterRecord(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.profiles[8478401] = PlayerProfile{
		ID: 8478401, FirstName: "Other", LastName: "Name", Position: "L",
	}

	state := NewAggregationState()
	state.PutPlayer(player.Player{
		ID: 8478401, FirstName: "David", LastName: "Pastrnak", SweaterNumber: 88, PositionCode: "R",
	})

	resolver := NewPlayerResolver(provider, state, logging.NewNop())
	got, ok := resolver.Resolve(t.Context(), 8478401, "BOS")
	if !ok {
		t.Fatal("expected known player to resolve")
	}
	if got.FirstName != "David" || got.PositionCode != "R" {
		t.Fatalf("roster record was replaced: %+v", got)
	}
	if provider.profileCalls[8478401] != 0 {
		t.Fatalf("known player must not trigger a profile fetch, got %d calls", provider.profileCalls[8478401])
	}
	if resolver.BackfilledCount() != 0 {
		t.Fatalf("expected no backfill, got %d", resolver.BackfilledCount())
	}
}

func TestPlayerResolver_BackfillsUnknownPlayer(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.profiles[8480000] = PlayerProfile{
		ID: 8480000, FirstName: "Late", LastName: "Callup", SweaterNumber: 92, Position: "C", Headshot: "https://assets.nhle.com/mugs/8480000.png",
	}

	state := NewAggregationState()
	state.PutTeam(team.New("BOS", "Boston Bruins", ""))

	resolver := NewPlayerResolver(provider, state, logging.NewNop())
	got, ok := resolver.Resolve(t.Context(), 8480000, "BOS")
	if !ok {
		t.Fatal("expected unknown player to be backfilled")
	}
	if got.Position != "C" || got.PositionCode != "" {
		t.Fatalf("backfilled player must carry position only, got %+v", got)
	}
	if resolver.BackfilledCount() != 1 {
		t.Fatalf("expected 1 backfilled player, got %d", resolver.BackfilledCount())
	}

	bos, _ := state.Team("BOS")
	if len(bos.PlayerIDs) != 1 || bos.PlayerIDs[0] != 8480000 {
		t.Fatalf("expected player attributed to BOS, got %v", bos.PlayerIDs)
	}

	// Second resolve for the same id hits the cache.
	if _, ok := resolver.Resolve(t.Context(), 8480000, "BOS"); !ok {
		t.Fatal("expected cached player to resolve")
	}
	if provider.profileCalls[8480000] != 1 {
		t.Fatalf("expected a single profile fetch, got %d", provider.profileCalls[8480000])
	}
}

func TestPlayerResolver_FetchFailureLeavesUnresolved(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.profileErr[9999999] = errTimeout

	state := NewAggregationState()
	resolver := NewPlayerResolver(provider, state, logging.NewNop())

	if _, ok := resolver.Resolve(t.Context(), 9999999, "BOS"); ok {
		t.Fatal("expected failed fetch to leave player unresolved")
	}
	if resolver.UnresolvedCount() != 1 {
		t.Fatalf("expected 1 unresolved, got %d", resolver.UnresolvedCount())
	}
	if _, ok := state.Player(9999999); ok {
		t.Fatal("failed fetch must not store a player")
	}
}

func TestPlayerResolver_RejectsNonPositiveID(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	state := NewAggregationState()
	resolver := NewPlayerResolver(provider, state, logging.NewNop())

	if _, ok := resolver.Resolve(t.Context(), 0, "BOS"); ok {
		t.Fatal("zero id must not resolve")
	}
	if _, ok := resolver.Resolve(t.Context(), -5, "BOS"); ok {
		t.Fatal("negative id must not resolve")
	}
	if resolver.UnresolvedCount() != 0 {
		t.Fatalf("non-positive ids are not unresolved fetches, got %d", resolver.UnresolvedCount())
	}
}
