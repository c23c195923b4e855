// Package script runs JavaScript behaviour scripts with goja.
//
// A script defines a function decide(ctx) that receives a Context and
// returns a Decision-shaped object, e.g.
//
//	function decide(ctx) {
//	    return { moveX: ctx.directionToPlayer, jump: false };
//	}
package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dop251/goja"
)

// ErrNoDecide is returned when a script does not define a decide function
var ErrNoDecide = errors.New("script must define a 'decide' function")

// Behavior is a compiled script with its own runtime.
// Global state set up by the script persists between Decide calls.
type Behavior struct {
	name   string
	mu     sync.Mutex
	vm     *goja.Runtime
	decide goja.Callable
}

// Compile parses code and runs it once to define decide
func Compile(name, code string) (*Behavior, error) {
	program, err := goja.Compile(name, code, true)
	if err != nil {
		return nil, fmt.Errorf("script parse error: %w", err)
	}

	vm := goja.New()
	if _, err := vm.RunProgram(program); err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	decide, ok := goja.AssertFunction(vm.Get("decide"))
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoDecide)
	}

	return &Behavior{name: name, vm: vm, decide: decide}, nil
}

// LoadFile compiles the script stored at path
func LoadFile(path string) (*Behavior, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Compile(path, string(code))
}

// Name returns the name the script was compiled under
func (b *Behavior) Name() string {
	return b.name
}

// Decide calls decide(ctx) and converts its result into a Decision
func (b *Behavior) Decide(ctx Context) (Decision, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Serialize context to JSON and parse it into a JavaScript object
	ctxJSON, err := json.Marshal(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to serialize context: %w", err)
	}
	var ctxMap map[string]any
	if err := json.Unmarshal(ctxJSON, &ctxMap); err != nil {
		return Decision{}, fmt.Errorf("failed to parse context: %w", err)
	}

	result, err := b.decide(goja.Undefined(), b.vm.ToValue(ctxMap))
	if err != nil {
		return Decision{}, fmt.Errorf("decide function failed: %w", err)
	}
	if goja.IsUndefined(result) || goja.IsNull(result) {
		return Decision{}, nil
	}

	// Convert result to JSON and then to Decision
	resultJSON, err := json.Marshal(result.Export())
	if err != nil {
		return Decision{}, fmt.Errorf("failed to serialize result: %w", err)
	}

	var decision Decision
	if err := json.Unmarshal(resultJSON, &decision); err != nil {
		return Decision{}, fmt.Errorf("failed to parse script result: %w (result: %s)", err, string(resultJSON))
	}

	return decision.Clamped(), nil
}

// Validate checks that code parses and defines a decide function
func Validate(code string) error {
	_, err := Compile("validate", code)
	return err
}
