package cron

import "testing"

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	registry := NewRegistry()
	jobA := &testJob{name: "a"}
	jobB := &testJob{name: "b"}
	if err := registry.Register(jobA); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := registry.Register(jobB); err != nil {
		t.Fatalf("register b: %v", err)
	}
	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != jobA || jobs[1] != jobB {
		t.Fatalf("jobs returned out of order: %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistryRejectsInvalidJobs(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(nil); err == nil {
		t.Fatal("expected nil job to be rejected")
	}
	if err := registry.Register(&testJob{}); err == nil {
		t.Fatal("expected unnamed job to be rejected")
	}
	if err := registry.Register(&testJob{name: "dup"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(&testJob{name: "dup"}); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}
}
