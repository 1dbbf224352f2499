package domain

// Backend is the full request/response surface of the watch-tracking service.
// The HTTP adapter implements it; services wrap the individual pieces.
type Backend interface {
	LibraryClient
	EpisodeClient
	FriendClient
	TagClient
	SearchClient
	HealthClient
}
