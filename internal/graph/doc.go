// Package graph builds the instance table of the DATA section and resolves
// references between entities.
//
// The table is filled once by Build and is read-only afterwards, so lookups
// need no locking. References are never resolved eagerly: callers follow
// them through Resolve and ResolveTyped, and use a Trail when a walk can
// revisit an entity.
package graph
