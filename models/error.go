package models

// Error is the JSON error envelope returned by every failing endpoint.
// The field is named "detail" to match what existing frontends parse.
type Error struct {
	Detail string `json:"detail"`
}
