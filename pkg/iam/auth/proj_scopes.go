package auth

import "strings"

// ============================================================================
// DOMAIN-SPECIFIC SCOPES - Matching
// ============================================================================

const (
	// Match scopes
	ScopeMatchesAll   = "matches:*"
	ScopeMatchesRead  = "matches:read"
	ScopeMatchesWrite = "matches:write" // Invalidate cached rankings

	// Candidate scopes
	ScopeCandidatesAll   = "candidates:*"
	ScopeCandidatesWrite = "candidates:write"

	// Résumé analysis scopes
	ScopeAnalysisAll   = "analysis:*"
	ScopeAnalysisRead  = "analysis:read"
	ScopeAnalysisWrite = "analysis:write"
)

// DomainScopeGroups defines role groupings issued in tokens
var DomainScopeGroups = map[string][]string{
	"recruiter": {
		ScopeMatchesAll,
		ScopeCandidatesAll,
		ScopeAnalysisRead,
	},
	"candidate": {
		ScopeCandidatesWrite,
		ScopeAnalysisAll,
	},
}

// HasScope reports whether granted covers required. "<resource>:*" grants every
// action on that resource.
func HasScope(granted []string, required string) bool {
	resource, _, _ := strings.Cut(required, ":")
	for _, s := range granted {
		if s == required || s == resource+":*" {
			return true
		}
	}
	return false
}
