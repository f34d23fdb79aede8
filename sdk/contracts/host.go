package contracts

// Resolver looks up a host function by name. It mirrors the host's plugin entry
// point: the returned value is either nil (capability absent) or a Go func whose
// signature matches the one documented for that name in the host package.
type Resolver interface {
	GetFunc(name string) interface{}
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(name string) interface{}

// GetFunc calls f(name).
func (f ResolverFunc) GetFunc(name string) interface{} {
	return f(name)
}

// Project is an opaque host project handle. The zero value means "current project".
type Project uintptr

// Track is an opaque host track handle. Handles are compared by identity;
// the zero value means "no track".
type Track uintptr
