package engine

import (
	"errors"
	"reflect"
	"testing"
)

func createTestConfig() *GridConfig {
	return &GridConfig{
		Name:        "Engine Test Config",
		Description: "Configuration for engine integration tests",
		Rows:        5,
		Width:       100,
		Layout: []string{
			".....",
			".###.",
			".....",
			".....",
			".....",
		},
	}
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine.StartCell() != nil || engine.EndCell() != nil {
		t.Error("Expected no start or end initially")
	}
	if engine.Grid().Rows() != 5 {
		t.Errorf("Expected 5 rows, got %d", engine.Grid().Rows())
	}
	if engine.Grid().CountState(Barrier) != 3 {
		t.Errorf("Expected 3 barriers, got %d", engine.Grid().CountState(Barrier))
	}
	if engine.IsRunning() {
		t.Error("Expected engine to be idle")
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = ""

	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults()
	if engine.Grid().Rows() != DefaultRows {
		t.Errorf("Expected %d rows, got %d", DefaultRows, engine.Grid().Rows())
	}
	if engine.Grid().TileSize() != 16 {
		t.Errorf("Expected tile size 16, got %d", engine.Grid().TileSize())
	}
}

func TestEngine_PaintSequence(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())

	steps := []struct {
		name string
		pos  Position
		want CellState
	}{
		{"first pick becomes start", Position{0, 0}, Start},
		{"start is not repainted", Position{0, 0}, Start},
		{"second pick becomes end", Position{4, 4}, End},
		{"end is not repainted", Position{4, 4}, End},
		{"later picks are barriers", Position{2, 2}, Barrier},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			got, err := engine.Paint(step.pos)
			if err != nil {
				t.Fatalf("Paint failed: %v", err)
			}
			if got != step.want {
				t.Errorf("Expected %s, got %s", step.want, got)
			}
		})
	}

	if engine.StartCell().Position() != (Position{0, 0}) {
		t.Errorf("Unexpected start %v", engine.StartCell().Position())
	}
	if engine.EndCell().Position() != (Position{4, 4}) {
		t.Errorf("Unexpected end %v", engine.EndCell().Position())
	}
}

func TestEngine_EraseEndpointAllowsRepick(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())
	engine.Paint(Position{0, 0})
	engine.Paint(Position{4, 4})

	if err := engine.Erase(Position{0, 0}); err != nil {
		t.Fatalf("Erase failed: %v", err)
	}
	if engine.StartCell() != nil {
		t.Error("Expected start to be unset")
	}
	if engine.Grid().Cell(0, 0).State() != Free {
		t.Error("Expected erased cell to be free")
	}

	// With the end still set, the next pick is the new start
	got, _ := engine.Paint(Position{3, 0})
	if got != Start {
		t.Errorf("Expected new start, got %s", got)
	}

	// Erasing a barrier simply frees it
	engine.Erase(Position{1, 1})
	if engine.Grid().Cell(1, 1).State() != Free {
		t.Error("Expected barrier to be erased")
	}
}

func TestEngine_PixelEdits(t *testing.T) {
	engine, _ := NewEngine(createTestConfig()) // 100px wide, tile 20

	got, err := engine.PaintPixel(Pixel{X: 45, Y: 5})
	if err != nil {
		t.Fatalf("PaintPixel failed: %v", err)
	}
	if got != Start || engine.StartCell().Position() != (Position{0, 2}) {
		t.Errorf("Expected start at (0,2), got %s at %v", got, engine.StartCell().Position())
	}

	if err := engine.ErasePixel(Pixel{X: 59, Y: 19}); err != nil {
		t.Fatalf("ErasePixel failed: %v", err)
	}
	if engine.StartCell() != nil {
		t.Error("Expected start erased")
	}

	if _, err := engine.PaintPixel(Pixel{X: 100, Y: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
	if err := engine.ErasePixel(Pixel{X: -1, Y: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestEngine_OutOfBounds(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())

	if _, err := engine.Paint(Position{5, 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
	if err := engine.Erase(Position{0, -1}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestEngine_RunRequiresEndpoints(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())

	if _, err := engine.Run(nil); !errors.Is(err, ErrStartNotSet) {
		t.Errorf("Expected ErrStartNotSet, got %v", err)
	}
	engine.Paint(Position{0, 0})
	if _, err := engine.Run(nil); !errors.Is(err, ErrEndNotSet) {
		t.Errorf("Expected ErrEndNotSet, got %v", err)
	}
}

func TestEngine_Run(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())
	engine.Paint(Position{0, 2})
	engine.Paint(Position{2, 2})

	phases := map[Phase]int{}
	result, err := engine.Run(func(p Phase) { phases[p]++ })
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Found {
		t.Fatal("Expected a path around the wall")
	}
	if result.Cost != 6 {
		t.Errorf("Expected detour of 6, got %d", result.Cost)
	}
	if phases[PhasePath] != 5 {
		t.Errorf("Expected 5 path steps, got %d", phases[PhasePath])
	}
	if phases[PhaseSearch] != result.Expanded {
		t.Errorf("Expected %d search steps, got %d", result.Expanded, phases[PhaseSearch])
	}

	state := engine.GetState()
	if state.Runs != 1 || state.LastResult == nil || !state.LastResult.Found {
		t.Errorf("Unexpected state after run: %+v", state)
	}
}

func TestEngine_RunSeesBarrierEditsMadeBeforeIt(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())
	engine.Paint(Position{0, 0})
	engine.Paint(Position{0, 4})

	first, _ := engine.Run(nil)
	if first.Cost != 4 {
		t.Fatalf("Expected straight path of 4, got %d", first.Cost)
	}

	engine.ResetSearch()
	engine.Paint(Position{0, 2}) // block the top row

	second, _ := engine.Run(nil)
	if !second.Found || second.Cost != 8 {
		t.Errorf("Expected detour of 8 after new barrier, got found=%v cost=%d", second.Found, second.Cost)
	}
}

func TestEngine_EditsRefusedDuringRun(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())
	engine.Paint(Position{0, 0})
	engine.Paint(Position{4, 4})

	var paintErr, runErr error
	var scatterErr, clearErr, resetErr error
	engine.Run(func(Phase) {
		if paintErr == nil {
			_, paintErr = engine.Paint(Position{3, 3})
			_, runErr = engine.Run(nil)
			_, scatterErr = engine.Scatter(DefaultScatterOptions())
			clearErr = engine.Clear()
			resetErr = engine.ResetSearch()
		}
	})

	if !errors.Is(paintErr, ErrSearchInProgress) {
		t.Errorf("Expected ErrSearchInProgress for paint, got %v", paintErr)
	}
	if !errors.Is(runErr, ErrSearchInProgress) {
		t.Errorf("Expected ErrSearchInProgress for nested run, got %v", runErr)
	}
	if !errors.Is(scatterErr, ErrSearchInProgress) {
		t.Errorf("Expected ErrSearchInProgress for scatter, got %v", scatterErr)
	}
	if !errors.Is(clearErr, ErrSearchInProgress) {
		t.Errorf("Expected ErrSearchInProgress for clear, got %v", clearErr)
	}
	if !errors.Is(resetErr, ErrSearchInProgress) {
		t.Errorf("Expected ErrSearchInProgress for reset, got %v", resetErr)
	}
	if engine.StartCell() == nil {
		t.Error("Clear during a run must leave the grid alone")
	}
	if engine.IsRunning() {
		t.Error("Expected running flag to be released")
	}
}

func TestEngine_ResetSearchIsIdempotent(t *testing.T) {
	layout := []string{
		"S....",
		".###.",
		"...#.",
		".#...",
		"....E",
	}
	config := &GridConfig{Name: "idem", Description: "idempotence", Rows: 5, Layout: layout}

	fresh, _ := NewEngine(config)
	freshResult, _ := fresh.Run(nil)

	reused, _ := NewEngine(config)
	reused.Run(nil)
	reused.ResetSearch()
	if got := reused.Grid().Layout(); !reflect.DeepEqual(got, layout) {
		t.Fatalf("Expected layout restored to %v, got %v", layout, got)
	}
	rerun, _ := reused.Run(nil)

	if !reflect.DeepEqual(freshResult, rerun) {
		t.Errorf("Expected identical results, got %+v and %+v", freshResult, rerun)
	}
	if !reflect.DeepEqual(fresh.Grid().Layout(), reused.Grid().Layout()) {
		t.Errorf("Expected identical final layouts")
	}
}

func TestEngine_Clear(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())
	engine.Paint(Position{0, 0})
	engine.Paint(Position{4, 4})
	engine.Run(nil)

	engine.Clear()

	if engine.StartCell() != nil || engine.EndCell() != nil {
		t.Error("Expected endpoints unset after clear")
	}
	if engine.Grid().CountState(Free) != 25 {
		t.Errorf("Expected all cells free, got %v", engine.Grid().Layout())
	}
	if engine.LastResult() != nil {
		t.Error("Expected last result dropped")
	}
}

func TestEngine_SetConfig(t *testing.T) {
	engine := NewEngineWithDefaults()

	config := &GridConfig{Name: "tiny", Description: "tiny grid", Rows: 2, Layout: []string{"S.", ".E"}}
	if err := engine.SetConfig(config); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if engine.StartCell() == nil || engine.EndCell() == nil {
		t.Fatal("Expected endpoints from layout")
	}
	if engine.GetConfig() != config {
		t.Error("Expected config to be stored")
	}

	if err := engine.SetConfig(&GridConfig{Name: "bad"}); err == nil {
		t.Error("Expected invalid config to be rejected")
	}
}
