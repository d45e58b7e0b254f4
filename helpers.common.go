package main

// OperationIDPrefix tags the uids issued for simulated asynchronous requests.
const OperationIDPrefix = "op"

// Durable storage keys. The session projection and the display preferences
// each live under one well-known key of the local bolt database.
const (
	SessionStorageKey = "user"
	PrefsStorageKey   = "theme"
)

// indexOf returns the position of the first occurrence of v in s, or -1.
func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// containsString reports whether v is one of the given strings.
func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
