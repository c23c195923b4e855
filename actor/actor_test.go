package actor

import (
	"errors"
	"math"
	"testing"
	"time"

	"pluvia/gametime"
	"pluvia/physics"
	"pluvia/script"
	"pluvia/tilemap"
)

const frame = 16 * time.Millisecond

// groundedEntity returns an entity standing on a floor, grounded by one
// tick of a real scene
func groundedEntity(t *testing.T) (*physics.Scene, *physics.Entity) {
	t.Helper()
	w, h, solid, err := tilemap.ParseRows(
		"........",
		"........",
		"........",
		"########",
	)
	if err != nil {
		t.Fatal(err)
	}
	m := tilemap.New("floor", w, h, 16, 16)
	if _, err := m.AddLayer(tilemap.ForegroundLayer, solid); err != nil {
		t.Fatal(err)
	}

	s := physics.NewScene(physics.DefaultConfig(), tilemap.NewMemorySource(m))
	if err := s.OnStart("floor", 4, 2); err != nil {
		t.Fatalf("OnStart: %v", err)
	}
	e := physics.NewEntity(40, 32, physics.NewBox(16, 16))
	s.RegisterEntity(e)
	s.OnUpdate(gametime.Time{Elapsed: frame})
	if !e.IsOnGround() {
		t.Fatal("entity is not grounded on the floor")
	}
	return s, e
}

func TestJumpSpeed(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, InitialJumpSpeed},
		{MaxJumpDuration, 0},
		{MaxJumpDuration / 2, InitialJumpSpeed * (1 - math.Pow(0.5, JumpPowerExponent))},
	}
	for _, tt := range tests {
		if got := JumpSpeed(tt.elapsed); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("JumpSpeed(%v) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}

	// decays monotonically
	prev := JumpSpeed(0)
	for d := frame; d <= MaxJumpDuration; d += frame {
		if s := JumpSpeed(d); s > prev {
			t.Fatalf("JumpSpeed(%v) = %v increased from %v", d, s, prev)
		} else {
			prev = s
		}
	}
}

func TestPlayerRun(t *testing.T) {
	p := NewPlayer(physics.NewEntity(0, 0, physics.NewBox(16, 16)))
	ft := gametime.Time{Elapsed: frame}

	p.MoveRight(ft)
	p.Update(ft)
	if got := p.Entity().Velocity.X; got != DefaultRunSpeed {
		t.Errorf("Velocity.X = %v, want %v", got, DefaultRunSpeed)
	}

	p.MoveLeft(ft)
	p.Update(ft)
	if got := p.Entity().Velocity.X; got != -DefaultRunSpeed {
		t.Errorf("Velocity.X = %v, want %v", got, -DefaultRunSpeed)
	}

	// both directions cancel
	p.MoveLeft(ft)
	p.MoveRight(ft)
	p.Update(ft)
	if got := p.Entity().Velocity.X; got != 0 {
		t.Errorf("Velocity.X = %v with both keys, want 0", got)
	}

	// intent is cleared every frame
	p.Update(ft)
	if got := p.Entity().Velocity.X; got != 0 {
		t.Errorf("Velocity.X = %v with no keys, want 0", got)
	}
}

func TestPlayerJumpRequiresGround(t *testing.T) {
	p := NewPlayer(physics.NewEntity(0, 0, physics.NewBox(16, 16)))
	ft := gametime.Time{Elapsed: frame}

	p.Jump(ft)
	p.Update(ft)

	if p.IsJumping() {
		t.Error("airborne player started a jump")
	}
	if p.Entity().Velocity.Y != 0 {
		t.Errorf("Velocity.Y = %v, want 0", p.Entity().Velocity.Y)
	}
}

func TestPlayerJumpFromGround(t *testing.T) {
	s, e := groundedEntity(t)
	p := NewPlayer(e)
	ft := gametime.Time{Elapsed: frame}

	p.Jump(ft)
	p.Update(ft)

	if !p.IsJumping() {
		t.Fatal("grounded player did not start a jump")
	}
	want := -JumpSpeed(frame)
	if e.Velocity.Y != want {
		t.Errorf("Velocity.Y = %v, want %v", e.Velocity.Y, want)
	}

	s.OnUpdate(ft)
	if e.IsOnGround() {
		t.Error("player still grounded after the jump tick")
	}
	if e.Position.Y >= 32 {
		t.Errorf("player did not rise: y = %v", e.Position.Y)
	}
}

func TestPlayerJumpEndsAtMaxDuration(t *testing.T) {
	s, e := groundedEntity(t)
	p := NewPlayer(e)
	ft := gametime.Time{Elapsed: 100 * time.Millisecond}

	jumpingFrames := 0
	for i := 0; i < 12; i++ {
		p.Jump(ft)
		p.Update(ft)
		if p.IsJumping() {
			jumpingFrames++
		}
		s.OnUpdate(ft)
	}

	// starts at 100ms and pushes while the jump time is within 700ms
	if jumpingFrames != 7 {
		t.Errorf("jump lasted %d frames, want 7", jumpingFrames)
	}
	if p.IsJumping() {
		t.Error("jump still in progress after the maximum duration")
	}
}

func TestPlayerMustReleaseBeforeNextJump(t *testing.T) {
	s, e := groundedEntity(t)
	p := NewPlayer(e)
	ft := gametime.Time{Elapsed: frame}

	// hold jump through a full jump and the landing
	for i := 0; i < 200; i++ {
		p.Jump(ft)
		p.Update(ft)
		s.OnUpdate(ft)
	}
	if !e.IsOnGround() {
		t.Fatal("player did not land")
	}

	p.Jump(ft)
	p.Update(ft)
	if p.IsJumping() {
		t.Error("holding jump after landing started a new jump")
	}

	// release, then press again
	p.Update(ft)
	s.OnUpdate(ft)
	p.Jump(ft)
	p.Update(ft)
	if !p.IsJumping() {
		t.Error("jump after release did not start")
	}
}

func TestPlayerReleaseMidAirDoesNotRejump(t *testing.T) {
	s, e := groundedEntity(t)
	p := NewPlayer(e)
	ft := gametime.Time{Elapsed: frame}

	p.Jump(ft)
	p.Update(ft)
	s.OnUpdate(ft)

	// release for one frame while airborne, then hold again
	p.Update(ft)
	s.OnUpdate(ft)
	p.Jump(ft)
	p.Update(ft)

	if p.IsJumping() {
		t.Error("pressing jump in mid-air resumed the jump")
	}
}

func TestWalkerFollowsDecider(t *testing.T) {
	s, e := groundedEntity(t)
	target := physics.NewEntity(0, 32, physics.NewBox(16, 16))

	var seen script.Context
	w := NewWalker(e, DeciderFunc(func(ctx script.Context) (script.Decision, error) {
		seen = ctx
		return script.Decision{MoveX: ctx.DirectionToPlayer, Jump: true}, nil
	}), target)

	w.Update(gametime.Time{Elapsed: frame, Total: time.Second})

	if seen.DirectionToPlayer != -1 || !seen.OnGround || seen.GameTime != 1 {
		t.Errorf("decider saw %+v", seen)
	}
	if e.Velocity.X != -DefaultWalkSpeed {
		t.Errorf("Velocity.X = %v, want %v", e.Velocity.X, -DefaultWalkSpeed)
	}
	if e.Velocity.Y != -DefaultHopSpeed {
		t.Errorf("Velocity.Y = %v, want %v", e.Velocity.Y, -DefaultHopSpeed)
	}

	s.OnUpdate(gametime.Time{Elapsed: frame})
	if e.IsOnGround() {
		t.Error("walker did not leave the ground")
	}
}

func TestWalkerNoHopInAir(t *testing.T) {
	e := physics.NewEntity(0, 0, physics.NewBox(16, 16))
	w := NewWalker(e, DeciderFunc(func(script.Context) (script.Decision, error) {
		return script.Decision{MoveX: 0.5, Jump: true}, nil
	}), nil)

	w.Update(gametime.Time{Elapsed: frame})

	if e.Velocity.Y != 0 {
		t.Errorf("airborne walker hopped: Velocity.Y = %v", e.Velocity.Y)
	}
	if e.Velocity.X != 0.5*DefaultWalkSpeed {
		t.Errorf("Velocity.X = %v, want %v", e.Velocity.X, 0.5*DefaultWalkSpeed)
	}
}

func TestWalkerIdlesAfterError(t *testing.T) {
	e := physics.NewEntity(0, 0, physics.NewBox(16, 16))
	calls := 0
	w := NewWalker(e, DeciderFunc(func(script.Context) (script.Decision, error) {
		calls++
		if calls > 1 {
			return script.Decision{}, errors.New("script crashed")
		}
		return script.Decision{MoveX: 1}, nil
	}), nil)

	ft := gametime.Time{Elapsed: frame}
	w.Update(ft)
	if e.Velocity.X != DefaultWalkSpeed {
		t.Fatalf("Velocity.X = %v, want %v", e.Velocity.X, DefaultWalkSpeed)
	}

	w.Update(ft)
	w.Update(ft)
	if !w.Failed() {
		t.Error("walker did not record the failure")
	}
	if e.Velocity.X != 0 {
		t.Errorf("failed walker still moving: Velocity.X = %v", e.Velocity.X)
	}
	if calls != 2 {
		t.Errorf("decider called %d times, want 2", calls)
	}
}

func TestWalkerWithScript(t *testing.T) {
	b, err := script.Compile("right", `function decide(ctx) { return { moveX: 1 }; }`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	e := physics.NewEntity(0, 0, physics.NewBox(16, 16))
	w := NewWalker(e, b, nil)

	Update([]Actor{w}, gametime.Time{Elapsed: frame})

	if e.Velocity.X != DefaultWalkSpeed {
		t.Errorf("Velocity.X = %v, want %v", e.Velocity.X, DefaultWalkSpeed)
	}
}
