package ofs

import (
	"sync"
	"testing"
)

func TestDispatcherSerializesConcurrentSubmits(t *testing.T) {
	inst, sess := newTestInstance(t)
	d := NewDispatcher(inst, 4)
	defer d.Close()

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := d.Submit(func(inst *Instance) (interface{}, error) {
				name := "/f" + string(rune('a'+i)) + ".txt"
				return nil, inst.FileCreate(sess, name, []byte("x"))
			})
			if err != nil {
				t.Errorf("Submit %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := inst.DirList(sess, "/")
	if err != nil {
		t.Fatalf("DirList: %v", err)
	}
	if len(entries) != n {
		t.Errorf("DirList after %d concurrent creates = %d entries, want %d", n, len(entries), n)
	}
}

func TestDispatcherReturnsValue(t *testing.T) {
	inst, sess := newTestInstance(t)
	d := NewDispatcher(inst, 1)
	defer d.Close()

	if err := inst.FileCreate(sess, "/v.txt", []byte("value")); err != nil {
		t.Fatalf("FileCreate: %v", err)
	}

	v, err := d.Submit(func(inst *Instance) (interface{}, error) {
		return inst.FileRead(sess, "/v.txt")
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	data, ok := v.([]byte)
	if !ok || string(data) != "value" {
		t.Errorf("Submit result = %v, want %q", v, "value")
	}
}

func TestDispatcherSubmitFlushesAfterSuccess(t *testing.T) {
	inst, _ := newTestInstance(t)
	d := NewDispatcher(inst, 1)
	defer d.Close()

	// Close the container out from under the instance so Instance.flush's
	// File.Sync() call fails; this should surface through Submit even
	// though the submitted closure itself reports no error.
	inst.file.Close()

	_, err := d.Submit(func(inst *Instance) (interface{}, error) {
		return nil, nil
	})
	if err == nil {
		t.Error("expected Submit to surface the post-success flush failure")
	}
}

func TestDispatcherCloseRejectsFurtherSubmits(t *testing.T) {
	inst, _ := newTestInstance(t)
	d := NewDispatcher(inst, 1)
	d.Close()

	_, err := d.Submit(func(inst *Instance) (interface{}, error) {
		return nil, nil
	})
	if err == nil {
		t.Errorf("expected Submit after Close to fail")
	}
}
