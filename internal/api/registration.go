package api

import "regexp"

// tweetURLPattern accepts status links on twitter.com or x.com, optionally
// followed by a path suffix, query or fragment.
var tweetURLPattern = regexp.MustCompile(`^https?://(twitter\.com|x\.com)/\w+/status/\d+([/?#]\S*)?$`)

const capacityClosedCode = "capacity_closed"

func validTweetURL(raw string) bool {
	return tweetURLPattern.MatchString(raw)
}

func standupRemaining(count, capacity int) int {
	return max(0, capacity-count)
}

// tweetRequired reports whether the standup is full, making tweet
// verification mandatory for new registrations.
func tweetRequired(count, capacity int) bool {
	return count >= capacity
}
