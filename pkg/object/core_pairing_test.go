package object

import "testing"

func TestPairingInvariant(t *testing.T) {
	clientEP := newFakeEndpoint(RoleClient)
	serverEP := newFakeEndpoint(RoleServer)

	core := NewCore(InterfaceWlShm, 1, func() bool { return false })
	obj := &fakeObject{core: core}

	if err := core.SetClientID(clientEP, 10, obj); err != nil {
		t.Fatalf("SetClientID: %v", err)
	}
	if err := core.SetServerID(serverEP, 0xFF000010, obj); err != nil {
		t.Fatalf("SetServerID: %v", err)
	}

	gotClientID, ok := core.ClientObjID()
	if !ok || gotClientID != 10 {
		t.Fatalf("ClientObjID = %d, %v", gotClientID, ok)
	}
	gotServerID, ok := core.ServerObjID()
	if !ok || gotServerID != 0xFF000010 {
		t.Fatalf("ServerObjID = %d, %v", gotServerID, ok)
	}

	if clientEP.objects[10] != obj {
		t.Fatal("client endpoint lookup mismatch")
	}
	if serverEP.objects[0xFF000010] != obj {
		t.Fatal("server endpoint lookup mismatch")
	}
}

func TestSetClientIDTwiceFails(t *testing.T) {
	ep := newFakeEndpoint(RoleClient)
	core := NewCore(InterfaceWlShm, 1, func() bool { return false })
	obj := &fakeObject{core: core}

	if err := core.SetClientID(ep, 1, obj); err != nil {
		t.Fatalf("first SetClientID: %v", err)
	}
	if err := core.SetClientID(ep, 2, obj); err == nil || err.Kind != ErrClientAlreadySet {
		t.Fatalf("expected ClientAlreadySet, got %v", err)
	}
}

func TestRegisterDuplicateIDFails(t *testing.T) {
	ep := newFakeEndpoint(RoleClient)
	core1 := NewCore(InterfaceWlShm, 1, func() bool { return false })
	obj1 := &fakeObject{core: core1}
	core2 := NewCore(InterfaceWlShm, 1, func() bool { return false })
	obj2 := &fakeObject{core: core2}

	if err := core1.SetClientID(ep, 5, obj1); err != nil {
		t.Fatalf("first SetClientID: %v", err)
	}
	if err := core2.SetClientID(ep, 5, obj2); err == nil || err.Kind != ErrIDAlreadyRegistered {
		t.Fatalf("expected IDAlreadyRegistered, got %v", err)
	}
}

func TestEvictionOnBothSidesDestroyed(t *testing.T) {
	clientEP := newFakeEndpoint(RoleClient)
	serverEP := newFakeEndpoint(RoleServer)
	core := NewCore(InterfaceWlBuffer, 1, func() bool { return false })
	obj := &fakeObject{core: core}

	_ = core.SetClientID(clientEP, 1, obj)
	_ = core.SetServerID(serverEP, 0xFF000001, obj)

	core.HandleClientDestroy()
	if _, stillThere := clientEP.objects[1]; !stillThere {
		t.Fatal("object evicted after only one side destroyed")
	}

	core.HandleServerDestroy()
	if _, stillThere := clientEP.objects[1]; stillThere {
		t.Fatal("object not evicted from client endpoint after both sides destroyed")
	}
	if _, stillThere := serverEP.objects[0xFF000001]; stillThere {
		t.Fatal("object not evicted from server endpoint after both sides destroyed")
	}
}

func TestDeleteIDReleasesClientID(t *testing.T) {
	ep := newFakeEndpoint(RoleClient)
	core := NewCore(InterfaceWlCallback, 1, func() bool { return false })
	obj := &fakeObject{core: core}
	_ = core.SetClientID(ep, 3, obj)

	core.DeleteID()

	if _, stillThere := ep.objects[3]; stillThere {
		t.Fatal("id not released by DeleteID")
	}
	if _, ok := core.ClientObjID(); ok {
		t.Fatal("ClientObjID still reports an id after DeleteID")
	}
}

func TestHandlerBorrowDiscipline(t *testing.T) {
	h := NewHandlerHolder(func() bool { return false })
	if err := h.Set("handler-a"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	guard, err := h.TryBorrow()
	if err != nil {
		t.Fatalf("TryBorrow: %v", err)
	}
	if guard.Value() != "handler-a" {
		t.Fatalf("Value() = %v", guard.Value())
	}

	if err := h.Set("handler-b"); err == nil || err.Kind != ErrHandlerBorrowed {
		t.Fatalf("expected HandlerBorrowed while borrowed, got %v", err)
	}

	guard.Release()
	if err := h.Set("handler-b"); err != nil {
		t.Fatalf("Set after release: %v", err)
	}
}

func TestHandlerSetIgnoredAfterDestroyed(t *testing.T) {
	destroyed := true
	h := NewHandlerHolder(func() bool { return destroyed })
	if err := h.Set("late-handler"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if h.IsSet() {
		t.Fatal("handler set after process destroyed")
	}
}
