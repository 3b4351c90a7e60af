// Package policy holds the resource-ownership rules applied before every
// mutation. Handlers check existence first, then ownership, so callers can
// always distinguish not-found from forbidden from unauthenticated.
package policy

// CanModify reports whether the actor may update or delete a resource.
// Only the creator may mutate a post, comment, or video.
func CanModify(actorID, ownerID string) bool {
	return actorID != "" && actorID == ownerID
}

// CanRespondToRequest reports whether the actor may accept or reject a
// pending friend request. Only the recipient of the specific edge may
// respond; the sender cannot resolve their own request.
func CanRespondToRequest(actorID, requesterID, recipientID string) bool {
	return actorID != "" && actorID == recipientID && actorID != requesterID
}
