// Package memory sizes the Go soft memory limit (GOMEMLIMIT) from the
// container memory limit.
//
// In Kubernetes the limit is usually passed in through the Downward API:
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
//
// [Configure] then sets GOMEMLIMIT to MEMORY_RATIO (default 0.85) of that
// value. An explicit GOMEMLIMIT always takes precedence.
package memory
