package controllers

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

type failingSyncer struct {
	err   error
	calls int
}

func (f *failingSyncer) Sync(groupID *uint) error {
	f.calls++
	return f.err
}

func TestStudentResyncFailureIsLogged(t *testing.T) {
	hook := logrustest.NewGlobal()
	defer hook.Reset()

	syncer := &failingSyncer{err: errors.New("connection refused")}
	sc := &StudentController{metrics: syncer}
	gid := uint(3)
	sc.resync(&gid)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("level = %v, want warning", entry.Level)
	}
	if entry.Data["group_id"] != uint(3) {
		t.Errorf("group_id field = %v, want 3", entry.Data["group_id"])
	}
}

func TestGroupResyncFailureIsLogged(t *testing.T) {
	hook := logrustest.NewGlobal()
	defer hook.Reset()

	gc := &GroupController{metrics: &failingSyncer{err: errors.New("db down")}}
	gid := uint(9)
	gc.resync(&gid)

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning entry, got %+v", entry)
	}
}

func TestResyncNilGroupIsNoop(t *testing.T) {
	hook := logrustest.NewGlobal()
	defer hook.Reset()

	syncer := &failingSyncer{err: errors.New("unreachable")}
	sc := &StudentController{metrics: syncer}
	sc.resync(nil)

	if syncer.calls != 0 {
		t.Errorf("sync called %d times for a nil group", syncer.calls)
	}
	if len(hook.Entries) != 0 {
		t.Errorf("unexpected log entries: %v", hook.Entries)
	}
}

func TestResyncSuccessLogsNothing(t *testing.T) {
	hook := logrustest.NewGlobal()
	defer hook.Reset()

	sc := &StudentController{metrics: &failingSyncer{}}
	gid := uint(1)
	sc.resync(&gid)

	if len(hook.Entries) != 0 {
		t.Errorf("unexpected log entries: %v", hook.Entries)
	}
}
