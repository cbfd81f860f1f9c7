package session_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jinseok-oh/minwon-kiosk/internal/model/conversation"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/session"
)

func TestGetOrCreateMintsID(t *testing.T) {
	store := session.NewStore()

	sess := store.GetOrCreate("")
	if sess.ID() == "" {
		t.Fatal("expected a minted session id")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}
}

func TestGetOrCreateAdoptsClientSuppliedID(t *testing.T) {
	store := session.NewStore()

	// An unknown but client-supplied id becomes a new session under that id.
	sess := store.GetOrCreate("kiosk-7")
	if sess.ID() != "kiosk-7" {
		t.Fatalf("expected session id kiosk-7, got %s", sess.ID())
	}

	again := store.GetOrCreate("kiosk-7")
	if again != sess {
		t.Fatal("expected the same session for a known id")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}
}

func TestExchangeAppendsInOrder(t *testing.T) {
	store := session.NewStore()
	sess := store.GetOrCreate("")

	err := sess.Exchange(func(history []conversation.Turn) ([]conversation.Turn, error) {
		if len(history) != 0 {
			t.Fatalf("expected empty history, got %d turns", len(history))
		}
		return []conversation.Turn{
			{Role: conversation.RoleUser, Content: "안녕하세요"},
			{Role: conversation.RoleAssistant, Content: "무엇을 도와드릴까요?"},
		}, nil
	})
	if err != nil {
		t.Fatalf("Exchange err: %v", err)
	}

	turns := sess.Transcript()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != conversation.RoleUser || turns[1].Role != conversation.RoleAssistant {
		t.Fatalf("unexpected turn roles: %s, %s", turns[0].Role, turns[1].Role)
	}
	if turns[0].CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be stamped")
	}
}

func TestExchangeFailureLeavesHistoryUntouched(t *testing.T) {
	store := session.NewStore()
	sess := store.GetOrCreate("")

	wantErr := errors.New("upstream boom")
	err := sess.Exchange(func([]conversation.Turn) ([]conversation.Turn, error) {
		return []conversation.Turn{{Role: conversation.RoleUser, Content: "lost"}}, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	if got := len(sess.Transcript()); got != 0 {
		t.Fatalf("expected no turns after failed exchange, got %d", got)
	}
}

func TestTranscriptReturnsCopy(t *testing.T) {
	store := session.NewStore()
	sess := store.GetOrCreate("")

	_ = sess.Exchange(func([]conversation.Turn) ([]conversation.Turn, error) {
		return []conversation.Turn{{Role: conversation.RoleUser, Content: "original"}}, nil
	})

	turns := sess.Transcript()
	turns[0].Content = "mutated"

	if sess.Transcript()[0].Content != "original" {
		t.Fatal("Transcript must return an isolated copy")
	}
}

func TestConcurrentExchangesLoseNoTurn(t *testing.T) {
	store := session.NewStore()
	sess := store.GetOrCreate("busy")

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			_ = sess.Exchange(func([]conversation.Turn) ([]conversation.Turn, error) {
				return []conversation.Turn{
					{Role: conversation.RoleUser, Content: fmt.Sprintf("q%d", n)},
					{Role: conversation.RoleAssistant, Content: fmt.Sprintf("a%d", n)},
				}, nil
			})
		}(i)
	}
	wg.Wait()

	turns := sess.Transcript()
	if len(turns) != workers*2 {
		t.Fatalf("expected %d turns, got %d", workers*2, len(turns))
	}
	// Each exchange appends atomically, so turns stay in user/assistant pairs.
	for i := 0; i < len(turns); i += 2 {
		if turns[i].Role != conversation.RoleUser || turns[i+1].Role != conversation.RoleAssistant {
			t.Fatalf("interleaved exchange at index %d: %s, %s", i, turns[i].Role, turns[i+1].Role)
		}
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	store := session.NewStore()
	first := store.GetOrCreate("a")
	second := store.GetOrCreate("b")

	_ = first.Exchange(func([]conversation.Turn) ([]conversation.Turn, error) {
		return []conversation.Turn{{Role: conversation.RoleUser, Content: "only in a"}}, nil
	})

	if got := len(second.Transcript()); got != 0 {
		t.Fatalf("session b should be empty, got %d turns", got)
	}
	if _, ok := store.Get("a"); !ok {
		t.Fatal("expected session a to be registered")
	}
}
