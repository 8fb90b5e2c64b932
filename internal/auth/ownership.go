package auth

import "github.com/sakif/community-forum/internal/apperror"

// AssertOwner allows a mutation only when the principal authored the resource.
//
// Callers must have already loaded the resource, so a missing resource is
// reported as NotFound before ownership is ever considered.
func AssertOwner(resourceAuthorID, principalID int64) error {
	if resourceAuthorID != principalID {
		return apperror.Unauthorized("you are not allowed to modify this resource")
	}
	return nil
}
