package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/l1jgo/navgrid/internal/data"
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/nav"
	"github.com/l1jgo/navgrid/internal/obstacle"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoLayoutFunc is returned when no loaded script defines obstacle_layout.
var ErrNoLayoutFunc = errors.New("lua function obstacle_layout not defined")

// Engine wraps a single gopher-lua VM running obstacle layout generators and
// the optional heuristic weight override.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in scriptsDir,
// in name order. A missing directory yields an engine with no scripts.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.loadDir(scriptsDir); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load layout scripts: %w", err)
	}
	return e, nil
}

// NewEngineFromString creates an engine from a single script body.
func NewEngineFromString(src string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("rect", vm.NewFunction(luaRect))
	return &Engine{vm: vm, log: log}
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// luaRect appends the cells of an inclusive rectangle to a stamp list:
// rect(list, row0, col0, row1, col1 [, kind]). Returns the list.
func luaRect(L *lua.LState) int {
	list := L.CheckTable(1)
	r0, c0 := L.CheckInt(2), L.CheckInt(3)
	r1, c1 := L.CheckInt(4), L.CheckInt(5)
	kind := L.OptString(6, "full")
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			s := L.NewTable()
			s.RawSetString("row", lua.LNumber(r))
			s.RawSetString("col", lua.LNumber(c))
			s.RawSetString("kind", lua.LString(kind))
			list.Append(s)
		}
	}
	L.Push(list)
	return 1
}

// Layout calls obstacle_layout(rows, cols) and converts the returned list of
// {row, col, kind} tables to stamps.
func (e *Engine) Layout(rows, cols int) ([]obstacle.Stamp, error) {
	fn := e.vm.GetGlobal("obstacle_layout")
	if fn == lua.LNil {
		return nil, ErrNoLayoutFunc
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(rows), lua.LNumber(cols)); err != nil {
		return nil, fmt.Errorf("lua obstacle_layout: %w", err)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	list, ok := result.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua obstacle_layout returned %s, want table", result.Type())
	}
	stamps := make([]obstacle.Stamp, 0, list.Len())
	var convErr error
	list.ForEach(func(_, v lua.LValue) {
		if convErr != nil {
			return
		}
		t, ok := v.(*lua.LTable)
		if !ok {
			convErr = fmt.Errorf("lua obstacle_layout entry is %s, want table", v.Type())
			return
		}
		kindStr := ""
		if k := t.RawGetString("kind"); k != lua.LNil {
			kindStr = lua.LVAsString(k)
		}
		kind, err := data.ParseKind(kindStr)
		if err != nil {
			convErr = err
			return
		}
		stamps = append(stamps, obstacle.Stamp{
			Cell: grid.Cell{
				Row: int(lua.LVAsNumber(t.RawGetString("row"))),
				Col: int(lua.LVAsNumber(t.RawGetString("col"))),
			},
			Kind: kind,
		})
	})
	if convErr != nil {
		return nil, convErr
	}
	return stamps, nil
}

// HeuristicCurve samples heuristic_weight(dist, ramp, max) at every whole
// cell distance up to the ramp and returns params with Curve set. Without
// the function, or on a script error, params come back unchanged.
func (e *Engine) HeuristicCurve(params nav.HeuristicParams) (nav.HeuristicParams, bool) {
	fn := e.vm.GetGlobal("heuristic_weight")
	if fn == lua.LNil {
		return params, false
	}
	n := int(params.RampCells) + 1
	if n < 2 {
		n = 2
	}
	curve := make([]float64, n)
	for i := range curve {
		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, lua.LNumber(i), lua.LNumber(params.RampCells), lua.LNumber(params.MaxWeight)); err != nil {
			e.log.Error("lua heuristic_weight error", zap.Error(err))
			return params, false
		}
		w := float64(lua.LVAsNumber(e.vm.Get(-1)))
		e.vm.Pop(1)
		if w < 0 {
			w = 0
		}
		curve[i] = w
	}
	params.Curve = curve
	return params, true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
