package core

import (
	"errors"
	"testing"
)

func TestInflightSet_AcquireRelease(t *testing.T) {
	s := NewInflightSet()

	release, ok := s.Acquire("vid1")
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	if !s.Contains("vid1") {
		t.Error("set should contain vid1 while held")
	}
	if _, ok := s.Acquire("vid1"); ok {
		t.Error("second acquire for the same id should fail")
	}
	if _, ok := s.Acquire("vid2"); !ok {
		t.Error("acquire for a different id should succeed")
	}

	release()
	if s.Contains("vid1") {
		t.Error("set should not contain vid1 after release")
	}
	if _, ok := s.Acquire("vid1"); !ok {
		t.Error("re-acquire after release should succeed")
	}
}

func TestInflightSet_ReleasedOnErrorPath(t *testing.T) {
	s := NewInflightSet()

	// Deferred release must fire even when the guarded work fails.
	failingIngest := func() error {
		release, ok := s.Acquire("vid")
		if !ok {
			return errors.New("already in progress")
		}
		defer release()
		return errors.New("fetch failed")
	}

	if err := failingIngest(); err == nil {
		t.Fatal("expected ingest error")
	}
	if s.Contains("vid") {
		t.Fatal("failed ingest leaked the in-flight claim")
	}
	if err := failingIngest(); err == nil || err.Error() != "fetch failed" {
		t.Fatalf("retry should reach the failing step again, got %v", err)
	}
}
