package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/service"
)

func createTestConfig() *engine.MazeConfig {
	return &engine.MazeConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Layout: []string{
			"#####",
			"#S..#",
			"##.##",
			"#..E#",
			"#####",
		},
	}
}

type stubConfigs struct{}

func (stubConfigs) LoadConfig(string) (*engine.MazeConfig, error) { return createTestConfig(), nil }
func (stubConfigs) ListConfigs() ([]*service.ConfigInfo, error)   { return nil, nil }
func (stubConfigs) GetDefault() *engine.MazeConfig                { return createTestConfig() }
func (stubConfigs) SaveConfig(string, *engine.MazeConfig) error   { return nil }

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Grid == nil {
			t.Error("Expected grid to be initialized")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("a/b", config)
		if err != ErrInvalidSessionID {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid layout", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Layout = []string{"###", "#.", "###"}
		_, err := manager.Create("invalid-test", invalidConfig)
		if err == nil {
			t.Error("Expected error for ragged layout")
		}
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := manager.Create("nil-test", nil)
		if !errors.Is(err, service.ErrInvalidRequest) {
			t.Errorf("Expected ErrInvalidRequest, got %v", err)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("get-test", createTestConfig())

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the created session")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session != created {
			t.Error("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("missing")
		if !errors.Is(err, service.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("goc", config)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := manager.GetOrCreate("GOC", config)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("Expected existing session to be returned")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_ListAndDelete(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	for i := 0; i < 3; i++ {
		manager.Create(fmt.Sprintf("s%d", i), config)
	}
	if got := len(manager.List()); got != 3 {
		t.Fatalf("Expected 3 sessions, got %d", got)
	}

	if err := manager.Delete("S1"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := manager.Delete("s1"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if manager.Count() != 2 {
		t.Errorf("Expected 2 sessions, got %d", manager.Count())
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("touch", createTestConfig())
	before := session.LastAccessed()

	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed("touch"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessed().After(before) {
		t.Error("Expected last accessed time to advance")
	}
	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	old, _ := manager.Create("old", config)
	old.TouchAt(time.Now().Add(-2 * time.Hour))
	manager.Create("fresh", config)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if _, err := manager.Get("old"); err != ErrSessionNotFound {
		t.Error("Expected old session to be removed")
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Error("Expected fresh session to remain")
	}
}

func TestManager_CleanupKeepsRunningSessions(t *testing.T) {
	manager := NewManager()
	svc := service.NewMazeService(manager, stubConfigs{})
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	delay := 500
	if _, err := svc.SolveAsync(ctx, info.ID, service.SolveRequest{DelayMs: &delay}, nil, nil); err != nil {
		t.Fatalf("SolveAsync failed: %v", err)
	}
	defer svc.Cancel(ctx, info.ID)

	sess, _ := manager.Get(info.ID)
	sess.TouchAt(time.Now().Add(-48 * time.Hour))

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 0 {
		t.Errorf("Expected running session to survive cleanup, removed %d", removed)
	}
}

func TestManager_Concurrency(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c-%d", i)
			if _, err := manager.Create(id, config); err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(strings.ToUpper(id)); err != nil {
				errs <- err
			}
			manager.List()
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestManager_ConcurrentAccessTracking(t *testing.T) {
	manager := NewManager()
	svc := service.NewMazeService(manager, stubConfigs{})
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := svc.GetSession(ctx, info.ID); err != nil {
					t.Errorf("GetSession failed: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				manager.CleanupExpiredSessions(time.Hour)
			}
		}()
	}
	wg.Wait()

	if _, err := manager.Get(info.ID); err != nil {
		t.Errorf("Expected recently used session to survive cleanup: %v", err)
	}
}
