package write

import "testing"

func TestDelaySchedulerTwoFrameFade(t *testing.T) {
	var d DelayScheduler
	delay0 := d.Advance(0.0, true, 0.04)
	delay1 := d.Advance(0.04, false, 0)

	if delay0 != 4 {
		t.Errorf("frame0 delay = %d, want 4", delay0)
	}
	if delay1 != 4 {
		t.Errorf("frame1 delay (reused) = %d, want 4", delay1)
	}
}

func TestDelaySchedulerDuplicateCollapse(t *testing.T) {
	var d DelayScheduler
	// Advance must be called once per ORIGINAL frame, including the
	// duplicates the Preparer ends up not emitting.
	delay0 := d.Advance(0.0, true, 0.1)
	_ = d.Advance(0.1, true, 0.2)
	delay2 := d.Advance(0.2, false, 0)

	if delay0 != 10 {
		t.Errorf("delay0 = %d, want 10", delay0)
	}
	if delay2 != 10 {
		t.Errorf("delay2 (reused) = %d, want 10", delay2)
	}
}

func TestDelaySchedulerLoopOffset(t *testing.T) {
	var d DelayScheduler
	delay0 := d.Advance(0.5, true, 1.0)
	delay1 := d.Advance(1.0, false, 0)

	if delay0 != 50 {
		t.Errorf("delay0 = %d, want 50", delay0)
	}
	if delay1 != 50 {
		t.Errorf("delay1 = %d, want 50", delay1)
	}
	if delay0+delay1 != 100 {
		t.Errorf("total = %d, want 100", delay0+delay1)
	}
}
