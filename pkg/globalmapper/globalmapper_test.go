package globalmapper

import (
	"testing"

	"wlproxy/pkg/object"
)

type recordedBind struct {
	serverName uint32
	obj        object.Object
}

type recordedGlobal struct {
	name    uint32
	iface   object.Interface
	version uint32
}

// recorder is a Registry that appends every call it receives, standing in
// for the reference suite's VecDeque<RegistryMsg> fixture.
type recorder struct {
	binds         []recordedBind
	globals       []recordedGlobal
	globalRemoves []uint32

	failBind         bool
	failGlobal       bool
	failGlobalRemove bool
}

func (r *recorder) Global(name uint32, iface object.Interface, version uint32) *object.Error {
	if r.failGlobal {
		return &object.Error{Kind: object.ErrHandlerBorrowed}
	}
	r.globals = append(r.globals, recordedGlobal{name, iface, version})
	return nil
}

func (r *recorder) GlobalRemove(name uint32) *object.Error {
	if r.failGlobalRemove {
		return &object.Error{Kind: object.ErrHandlerBorrowed}
	}
	r.globalRemoves = append(r.globalRemoves, name)
	return nil
}

func (r *recorder) Bind(serverName uint32, obj object.Object) *object.Error {
	if r.failBind {
		return &object.Error{Kind: object.ErrHandlerBorrowed}
	}
	r.binds = append(r.binds, recordedBind{serverName, obj})
	return nil
}

type fakeBoundObject struct{ id uint64 }

func (f *fakeBoundObject) Core() *object.Core          { return nil }
func (f *fakeBoundObject) Interface() object.Interface { return object.InterfaceWlCompositor }

func TestSharedNameCounterAcrossSyntheticAndForwarded(t *testing.T) {
	r := &recorder{}
	m := New()

	kbName := m.AddSyntheticGlobal(r, object.InterfaceWlKeyboard, 1)
	if kbName != 1 {
		t.Fatalf("kbName = %d, want 1", kbName)
	}
	ptrName := m.AddSyntheticGlobal(r, object.InterfaceWlPointer, 2)
	if ptrName != 2 {
		t.Fatalf("ptrName = %d, want 2", ptrName)
	}
	shmName := m.ForwardGlobal(r, 1, object.InterfaceWlShm, 4)
	if shmName != 3 {
		t.Fatalf("shmName = %d, want 3", shmName)
	}

	want := []recordedGlobal{
		{1, object.InterfaceWlKeyboard, 1},
		{2, object.InterfaceWlPointer, 2},
		{3, object.InterfaceWlShm, 4},
	}
	if len(r.globals) != len(want) {
		t.Fatalf("globals = %v, want %v", r.globals, want)
	}
	for i := range want {
		if r.globals[i] != want[i] {
			t.Fatalf("globals[%d] = %v, want %v", i, r.globals[i], want[i])
		}
	}
}

func TestDefaultMapperShape(t *testing.T) {
	m := New()
	ptr, ok := m.serverToClient[0]
	if !ok || ptr != nil {
		t.Fatalf("serverToClient[0] = %v, %v; want nil, true", ptr, ok)
	}
	if len(m.clientToServer) != 1 || m.clientToServer[0] != nil {
		t.Fatalf("clientToServer = %v; want single nil sentinel", m.clientToServer)
	}
}

func TestTryAddSyntheticGlobalError(t *testing.T) {
	r := &recorder{failGlobal: true}
	m := New()
	if _, err := m.TryAddSyntheticGlobal(r, object.InterfaceWlShm, 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestAddSyntheticGlobalReturnsNameEvenOnError(t *testing.T) {
	r := &recorder{failGlobal: true}
	m := New()
	name := m.AddSyntheticGlobal(r, object.InterfaceWlShm, 1)
	if name != 1 {
		t.Fatalf("name = %d, want 1", name)
	}
}

func TestRemoveSyntheticGlobal(t *testing.T) {
	r := &recorder{}
	m := New()
	name := m.AddSyntheticGlobal(r, object.InterfaceWlShm, 1)
	r.globalRemoves = nil

	m.RemoveSyntheticGlobal(r, name)
	if len(r.globalRemoves) != 1 || r.globalRemoves[0] != 1 {
		t.Fatalf("globalRemoves = %v, want [1]", r.globalRemoves)
	}
}

func TestForwardGlobalRecordsBijection(t *testing.T) {
	r := &recorder{}
	m := New()

	m.ForwardGlobal(r, 100, object.InterfaceWlCompositor, 5)

	if len(r.globals) != 1 || r.globals[0] != (recordedGlobal{1, object.InterfaceWlCompositor, 5}) {
		t.Fatalf("globals = %v", r.globals)
	}
	if ptr := m.serverToClient[100]; ptr == nil || *ptr != 1 {
		t.Fatalf("serverToClient[100] = %v, want *1", ptr)
	}
	if ptr := m.clientToServer[1]; ptr == nil || *ptr != 100 {
		t.Fatalf("clientToServer[1] = %v, want *100", ptr)
	}
}

func TestIgnoreGlobal(t *testing.T) {
	m := New()
	m.IgnoreGlobal(50)
	ptr, ok := m.serverToClient[50]
	if !ok || ptr != nil {
		t.Fatalf("serverToClient[50] = %v, %v; want nil, true", ptr, ok)
	}
}

func TestForwardGlobalRemove(t *testing.T) {
	r := &recorder{}
	m := New()
	m.ForwardGlobal(r, 100, object.InterfaceWlCompositor, 5)
	r.globalRemoves = nil

	m.ForwardGlobalRemove(r, 100)
	if len(r.globalRemoves) != 1 || r.globalRemoves[0] != 1 {
		t.Fatalf("globalRemoves = %v, want [1]", r.globalRemoves)
	}
	if _, known := m.serverToClient[100]; known {
		t.Fatal("serverToClient[100] still present after removal")
	}
}

func TestForwardGlobalRemoveNonexistentIsNoop(t *testing.T) {
	r := &recorder{}
	m := New()
	m.ForwardGlobalRemove(r, 999)
	if len(r.globalRemoves) != 0 {
		t.Fatalf("globalRemoves = %v, want none", r.globalRemoves)
	}
}

func TestForwardGlobalRemoveIgnoredIsNoop(t *testing.T) {
	r := &recorder{}
	m := New()
	m.IgnoreGlobal(50)
	m.ForwardGlobalRemove(r, 50)
	if len(r.globalRemoves) != 0 {
		t.Fatalf("globalRemoves = %v, want none", r.globalRemoves)
	}
}

func TestForwardBind(t *testing.T) {
	r := &recorder{}
	m := New()
	m.ForwardGlobal(r, 100, object.InterfaceWlCompositor, 5)
	r.globals = nil

	obj := &fakeBoundObject{id: 1}
	m.ForwardBind(r, 1, obj)
	if len(r.binds) != 1 || r.binds[0].serverName != 100 || r.binds[0].obj != object.Object(obj) {
		t.Fatalf("binds = %v", r.binds)
	}
}

func TestForwardBindNonexistentIsNoop(t *testing.T) {
	r := &recorder{}
	m := New()
	m.ForwardBind(r, 999, &fakeBoundObject{})
	if len(r.binds) != 0 {
		t.Fatalf("binds = %v, want none", r.binds)
	}
}

func TestForwardBindSyntheticIsNoop(t *testing.T) {
	r := &recorder{}
	m := New()
	name := m.AddSyntheticGlobal(r, object.InterfaceWlShm, 1)
	r.binds = nil

	m.ForwardBind(r, name, &fakeBoundObject{})
	if len(r.binds) != 0 {
		t.Fatalf("binds = %v, want none", r.binds)
	}
}

func TestTryForwardBindError(t *testing.T) {
	r := &recorder{}
	m := New()
	m.ForwardGlobal(r, 100, object.InterfaceWlCompositor, 5)
	r.failBind = true

	if err := m.TryForwardBind(r, 1, &fakeBoundObject{}); err == nil {
		t.Fatal("expected error")
	}
}
