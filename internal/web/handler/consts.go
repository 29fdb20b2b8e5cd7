package handler

const (
	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// ParamScope is the route parameter holding a tenant id or "global".
	ParamScope = "scope"

	// ErrNilDepsMsg is used if router, db or engine is nil.
	ErrNilDepsMsg = "router, db or engine is nil"
)
