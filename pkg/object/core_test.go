package object

type fakeObject struct {
	core *Core
}

func (f *fakeObject) Core() *Core          { return f.core }
func (f *fakeObject) Interface() Interface { return f.core.Interface() }

// fakeEndpoint is a minimal object.Endpoint used to test Core's pairing and
// eviction logic without pulling in the real endpoint package.
type fakeEndpoint struct {
	role         Role
	objects      map[uint32]Object
	nextID       uint32
	unregistered []uint32
}

func newFakeEndpoint(role Role) *fakeEndpoint {
	return &fakeEndpoint{role: role, objects: map[uint32]Object{}, nextID: ServerIDRangeStart}
}

func (e *fakeEndpoint) Register(id uint32, obj Object) *Error {
	if _, exists := e.objects[id]; exists {
		return &Error{Kind: ErrIDAlreadyRegistered, ID: id}
	}
	e.objects[id] = obj
	return nil
}

func (e *fakeEndpoint) Unregister(id uint32) {
	delete(e.objects, id)
	e.unregistered = append(e.unregistered, id)
}

func (e *fakeEndpoint) Lookup(id uint32) (Object, bool) {
	obj, ok := e.objects[id]
	return obj, ok
}

func (e *fakeEndpoint) AllocateServerID() (uint32, *Error) {
	id := e.nextID
	e.nextID++
	return id, nil
}

func (e *fakeEndpoint) Role() Role { return e.role }

func (e *fakeEndpoint) QueueOutgoing(data []byte, fds []int) {}
